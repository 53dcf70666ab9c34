package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/yieldshift/errors"
	"github.com/iov-one/yieldshift/store"
	"github.com/iov-one/yieldshift/yieldtest/assert"
)

type limits struct {
	Max int64 `json:"max"`
}

func (l *limits) Marshal() ([]byte, error)   { return json.Marshal(l) }
func (l *limits) Unmarshal(raw []byte) error { return json.Unmarshal(raw, l) }

func (l *limits) Validate() error {
	if l.Max <= 0 {
		return errors.Field("Max", errors.ErrInvalidParameter, "must be positive")
	}
	return nil
}

func TestSaveLoad(t *testing.T) {
	cases := map[string]struct {
		conf        *limits
		wantSaveErr *errors.Error
		wantLoadErr *errors.Error
	}{
		"valid": {
			conf: &limits{Max: 10},
		},
		"invalid configuration is not saved": {
			conf:        &limits{Max: -1},
			wantSaveErr: errors.ErrInvalidParameter,
			wantLoadErr: errors.ErrNotFound,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			err := Save(db, "limits", tc.conf)
			if tc.wantSaveErr != nil {
				assert.IsErr(t, tc.wantSaveErr, err)
			} else {
				assert.Nil(t, err)
			}

			var got limits
			err = Load(db, "limits", &got)
			if tc.wantLoadErr != nil {
				assert.IsErr(t, tc.wantLoadErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, *tc.conf, got)
		})
	}
}

func TestInitConfig(t *testing.T) {
	db := store.MemStore()
	genesis := map[string]json.RawMessage{
		"limits": json.RawMessage(`{"max": 42}`),
		"broken": json.RawMessage(`{"max": "abc"}`),
	}
	var l limits
	assert.Nil(t, InitConfig(db, genesis, "limits", &l))
	assert.IsErr(t, errors.ErrNotFound, InitConfig(db, genesis, "missing", &l))
	assert.IsErr(t, errors.ErrInput, InitConfig(db, genesis, "broken", &l))

	var got limits
	assert.Nil(t, Load(db, "limits", &got))
	assert.Equal(t, int64(42), got.Max)
}
