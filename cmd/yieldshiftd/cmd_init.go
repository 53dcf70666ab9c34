package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/iov-one/yieldshift"
	"github.com/iov-one/yieldshift/app"
	"github.com/iov-one/yieldshift/store"
)

func cmdInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create the home directory of a new engine.

A configuration file, a genesis file and the initialized state database are
written to the home directory. This command fails if the home directory
already contains a genesis file.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl       = fl.String("home", env("YIELDSHIFT_HOME", filepath.Join(os.Getenv("HOME"), ".yieldshiftd")), "Home directory of the engine.")
		userPoolFl   = fl.String("user-pool", "", "Address of the user pool. Required.")
		hedgerPoolFl = fl.String("hedger-pool", "", "Address of the hedger pool. Required.")
		governanceFl = fl.String("governance", "", "Address granted the governance role.")
		emergencyFl  = fl.String("emergency", "", "Address granted the emergency role.")
		timeFl       = fl.String("time", "", "Genesis time in RFC3339 format. Current time is used if not provided.")
	)
	fl.Parse(args)

	userPool, err := yieldshift.ParseAddress(*userPoolFl)
	if err != nil {
		return fmt.Errorf("invalid user pool address: %s", err)
	}
	hedgerPool, err := yieldshift.ParseAddress(*hedgerPoolFl)
	if err != nil {
		return fmt.Errorf("invalid hedger pool address: %s", err)
	}
	genesisTime := time.Now()
	if *timeFl != "" {
		if genesisTime, err = time.Parse(time.RFC3339, *timeFl); err != nil {
			return fmt.Errorf("invalid genesis time: %s", err)
		}
	}

	conf := defaultConfig(*homeFl)
	conf.Roles = map[string][]string{
		yieldshift.RoleUserPool.String():   {userPool.String()},
		yieldshift.RoleHedgerPool.String(): {hedgerPool.String()},
	}
	if *governanceFl != "" {
		conf.Roles[yieldshift.RoleGovernance.String()] = []string{*governanceFl}
	}
	if *emergencyFl != "" {
		conf.Roles[yieldshift.RoleEmergency.String()] = []string{*emergencyFl}
	}
	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %s", err)
	}

	if _, err := os.Stat(conf.genesisPath()); !os.IsNotExist(err) {
		return fmt.Errorf("genesis file %q already exists", conf.genesisPath())
	}
	if err := os.MkdirAll(conf.Home, 0700); err != nil {
		return fmt.Errorf("cannot create home directory: %s", err)
	}

	gen, err := app.DefaultGenesis(yieldshift.AsUnixTime(genesisTime), userPool, hedgerPool)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(gen, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot serialize genesis: %s", err)
	}
	if err := os.WriteFile(conf.genesisPath(), raw, 0600); err != nil {
		return fmt.Errorf("cannot write genesis: %s", err)
	}
	configPath := filepath.Join(conf.Home, "config.yaml")
	if err := writeConfig(configPath, conf); err != nil {
		return err
	}

	db, err := store.OpenLevelDB(conf.dataPath())
	if err != nil {
		return fmt.Errorf("cannot open database: %s", err)
	}
	defer db.Close()
	if err := app.InitGenesis(db, gen); err != nil {
		return fmt.Errorf("cannot initialize state: %s", err)
	}

	fmt.Fprintf(output, "initialized %s\nconfiguration: %s\n", conf.Home, configPath)
	return nil
}
