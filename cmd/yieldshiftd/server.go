package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/app"
	"github.com/iov-one/yieldshift/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/libs/log"
)

// server exposes the engine over HTTP. Callers identify themselves with the
// caller field of the request body. Authenticating them is the job of the
// proxy in front of the daemon.
//
// All engine calls are serialized by the server mutex.
type server struct {
	mu      sync.Mutex
	engine  *app.Engine
	pauser  *app.Switch
	auth    yieldshift.Authorizer
	metrics *metrics
	logger  log.Logger
	// now returns the block time of a request.
	now func() time.Time
}

func (s *server) ctx(r *http.Request) context.Context {
	ctx := yieldshift.WithLogger(r.Context(), s.logger)
	return yieldshift.WithBlockTime(ctx, s.now())
}

func (s *server) routes() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/allocation", s.handle("allocation", s.getAllocation)).Methods("GET")
	api.HandleFunc("/params", s.handle("params", s.getParams)).Methods("GET")
	api.HandleFunc("/ledger", s.handle("ledger", s.getLedger)).Methods("GET")
	api.HandleFunc("/pools", s.handle("pools", s.getPools)).Methods("GET")
	api.HandleFunc("/pools", s.handle("report_pool_size", s.putPools)).Methods("PUT")
	api.HandleFunc("/stats", s.handle("stats", s.getStats)).Methods("GET")
	api.HandleFunc("/sources", s.handle("sources", s.getSources)).Methods("GET")
	api.HandleFunc("/breakdown", s.handle("breakdown", s.getBreakdown)).Methods("GET")
	api.HandleFunc("/accounts/{pool:user|hedger}/{address}", s.handle("account", s.getAccount)).Methods("GET")

	api.HandleFunc("/yield", s.handle("add_yield", s.postYield)).Methods("POST")
	api.HandleFunc("/claims/{pool:user|hedger}", s.handle("claim", s.postClaim)).Methods("POST")
	api.HandleFunc("/allocations/{pool:user|hedger}", s.handle("update_allocation", s.postAllocation)).Methods("POST")
	api.HandleFunc("/deposits", s.handle("deposit", s.postDeposit)).Methods("POST")
	api.HandleFunc("/rebalance", s.handle("rebalance", s.postRebalance)).Methods("POST")
	api.HandleFunc("/heartbeat", s.handle("heartbeat", s.postHeartbeat)).Methods("POST")
	api.HandleFunc("/pause", s.handle("pause", s.postPause(true))).Methods("POST")
	api.HandleFunc("/resume", s.handle("resume", s.postPause(false))).Methods("POST")

	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	return r
}

// handlerFn returns the response body of a request.
type handlerFn func(ctx context.Context, r *http.Request) (interface{}, error)

func (s *server) handle(op string, fn handlerFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		res, err := fn(s.ctx(r), r)
		if err == nil {
			s.metrics.observe(s.engine)
		}
		s.mu.Unlock()

		code := http.StatusOK
		if err != nil {
			code = httpStatus(err)
			res = map[string]string{"error": errors.Redact(err).Error()}
		}
		s.metrics.requests.WithLabelValues(op, http.StatusText(code)).Inc()
		writeJSON(w, code, res)
	}
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

// httpStatus maps an engine error to the response status.
func httpStatus(err error) int {
	switch {
	case errors.ErrNotAuthorized.Is(err), errors.ErrUnauthorizedYieldSource.Is(err):
		return http.StatusForbidden
	case errors.ErrNotFound.Is(err):
		return http.StatusNotFound
	case errors.ErrPaused.Is(err), errors.ErrReentrant.Is(err):
		return http.StatusServiceUnavailable
	case errors.ErrHoldingPeriodNotMet.Is(err), errors.ErrInsufficientYield.Is(err):
		return http.StatusConflict
	case errors.ErrInput.Is(err),
		errors.ErrInvalidParameter.Is(err),
		errors.ErrInvalidShiftRange.Is(err),
		errors.ErrZeroAddress.Is(err),
		errors.ErrYieldAmountMismatch.Is(err),
		errors.ErrArrayLengthMismatch.Is(err),
		errors.ErrBatchSizeTooLarge.Is(err),
		errors.ErrAmount.Is(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return errors.Wrapf(errors.ErrInput, "invalid request payload: %s", err)
	}
	return nil
}

func isUserPool(r *http.Request) bool {
	return mux.Vars(r)["pool"] == "user"
}

func (s *server) getAllocation(ctx context.Context, r *http.Request) (interface{}, error) {
	st, err := s.engine.ControllerState()
	if err != nil {
		return nil, err
	}
	return struct {
		AllocationBps yieldshift.Bps      `json:"allocation_bps"`
		TargetBps     yieldshift.Bps      `json:"target_bps"`
		Phase         string              `json:"phase"`
		LastUpdate    yieldshift.UnixTime `json:"last_update"`
	}{st.AllocationBps, st.TargetBps, st.Phase().String(), st.LastUpdate}, nil
}

func (s *server) getParams(ctx context.Context, r *http.Request) (interface{}, error) {
	return s.engine.Params()
}

func (s *server) getLedger(ctx context.Context, r *http.Request) (interface{}, error) {
	return s.engine.LedgerState()
}

func (s *server) getPools(ctx context.Context, r *http.Request) (interface{}, error) {
	return s.engine.PoolMetrics(ctx)
}

func (s *server) putPools(ctx context.Context, r *http.Request) (interface{}, error) {
	var req struct {
		Caller yieldshift.Address `json:"caller"`
		Size   yieldshift.Amount  `json:"size"`
	}
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if err := s.engine.ReportPoolSize(ctx, req.Caller, req.Size); err != nil {
		return nil, err
	}
	return s.engine.PoolMetrics(ctx)
}

func (s *server) getStats(ctx context.Context, r *http.Request) (interface{}, error) {
	var window time.Duration
	if raw := r.URL.Query().Get("window"); raw != "" {
		var err error
		if window, err = time.ParseDuration(raw); err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "invalid window %q", raw)
		}
	}
	return s.engine.AllocationStats(ctx, window)
}

func (s *server) getSources(ctx context.Context, r *http.Request) (interface{}, error) {
	return s.engine.Sources()
}

func (s *server) getBreakdown(ctx context.Context, r *http.Request) (interface{}, error) {
	amount, err := yieldshift.ParseAmount(r.URL.Query().Get("amount"))
	if err != nil {
		return nil, err
	}
	return s.engine.YieldDistributionBreakdown(amount)
}

func (s *server) getAccount(ctx context.Context, r *http.Request) (interface{}, error) {
	addr, err := yieldshift.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		return nil, err
	}
	return s.engine.Account(addr, isUserPool(r))
}

func (s *server) postYield(ctx context.Context, r *http.Request) (interface{}, error) {
	var req struct {
		Caller   yieldshift.Address `json:"caller"`
		Amount   yieldshift.Amount  `json:"amount"`
		Category string             `json:"category"`
	}
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	user, hedger, err := s.engine.AddYield(ctx, req.Caller, req.Amount, req.Category)
	if err != nil {
		return nil, err
	}
	return map[string]yieldshift.Amount{"user_share": user, "hedger_share": hedger}, nil
}

func (s *server) postClaim(ctx context.Context, r *http.Request) (interface{}, error) {
	var req struct {
		Caller      yieldshift.Address `json:"caller"`
		Participant yieldshift.Address `json:"participant"`
	}
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	claim := s.engine.ClaimHedgerYield
	if isUserPool(r) {
		claim = s.engine.ClaimUserYield
	}
	amount, err := claim(ctx, req.Caller, req.Participant)
	if err != nil {
		return nil, err
	}
	return map[string]yieldshift.Amount{"claimed": amount}, nil
}

func (s *server) postAllocation(ctx context.Context, r *http.Request) (interface{}, error) {
	var req struct {
		Caller       yieldshift.Address   `json:"caller"`
		Participants []yieldshift.Address `json:"participants"`
		Amounts      []yieldshift.Amount  `json:"amounts"`
	}
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	if len(req.Participants) == 1 && len(req.Amounts) == 1 {
		return nil, s.engine.UpdateYieldAllocation(ctx, req.Caller, req.Participants[0], req.Amounts[0], isUserPool(r))
	}
	return nil, s.engine.BatchUpdateYieldAllocation(ctx, req.Caller, req.Participants, req.Amounts, isUserPool(r))
}

func (s *server) postDeposit(ctx context.Context, r *http.Request) (interface{}, error) {
	var req struct {
		Caller      yieldshift.Address `json:"caller"`
		Participant yieldshift.Address `json:"participant"`
	}
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return nil, s.engine.UpdateLastDepositTime(ctx, req.Caller, req.Participant)
}

func (s *server) postRebalance(ctx context.Context, r *http.Request) (interface{}, error) {
	d, err := s.engine.UpdateYieldDistribution(ctx)
	if err != nil {
		return nil, err
	}
	return struct {
		RatioBps      uint64         `json:"ratio_bps"`
		OptimalBps    yieldshift.Bps `json:"optimal_bps"`
		PreviousBps   yieldshift.Bps `json:"previous_bps"`
		AllocationBps yieldshift.Bps `json:"allocation_bps"`
		Phase         string         `json:"phase"`
	}{d.RatioBps, d.OptimalBps, d.PreviousBps, d.AllocationBps, d.Phase().String()}, nil
}

func (s *server) postHeartbeat(ctx context.Context, r *http.Request) (interface{}, error) {
	updated, err := s.heartbeat(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]bool{"updated": updated}, nil
}

// heartbeat must be called with the server mutex held.
func (s *server) heartbeat(ctx context.Context) (bool, error) {
	updated, err := s.engine.CheckAndUpdateYieldDistribution(ctx)
	switch {
	case err != nil:
		s.metrics.heartbeats.WithLabelValues("failed").Inc()
	case updated:
		s.metrics.heartbeats.WithLabelValues("updated").Inc()
	default:
		s.metrics.heartbeats.WithLabelValues("skipped").Inc()
	}
	return updated, err
}

func (s *server) postPause(pause bool) handlerFn {
	return func(ctx context.Context, r *http.Request) (interface{}, error) {
		var req struct {
			Caller yieldshift.Address `json:"caller"`
		}
		if err := decode(r, &req); err != nil {
			return nil, err
		}
		if err := yieldshift.RequireRole(s.auth, req.Caller, yieldshift.RoleEmergency); err != nil {
			return nil, err
		}
		if pause {
			s.pauser.Pause()
		} else {
			s.pauser.Resume()
		}
		return map[string]bool{"paused": s.pauser.IsPaused(ctx)}, nil
	}
}

