package config

import (
	"strings"
	"testing"
)

func TestComposeDSN(t *testing.T) {
	cases := []struct {
		name     string
		dsn      string
		password string
		wantSub  string
	}{
		{
			name:     "resolved password replaces template credential",
			dsn:      "app:@tcp(127.0.0.1:3306)/guncelgiris?parseTime=true",
			password: "s3cret",
			wantSub:  "app:s3cret@tcp(127.0.0.1:3306)",
		},
		{
			name:     "empty password keeps inline-credential dsn",
			dsn:      "app:inline@tcp(127.0.0.1:3306)/guncelgiris?parseTime=true",
			password: "",
			wantSub:  "app:inline@tcp(127.0.0.1:3306)",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{Database: Database{
				GlobalDSN:      tc.dsn,
				GlobalPassword: tc.password,
			}}
			if err := composeDSN(&cfg); err != nil {
				t.Fatalf("composeDSN: %v", err)
			}
			if !strings.Contains(cfg.Database.GlobalDSN, tc.wantSub) {
				t.Errorf("dsn = %q, want it to contain %q", cfg.Database.GlobalDSN, tc.wantSub)
			}
		})
	}
}

func TestComposeDSN_BadTemplate(t *testing.T) {
	cfg := Config{Database: Database{
		GlobalDSN:      "not a dsn at all",
		GlobalPassword: "s3cret",
	}}
	if err := composeDSN(&cfg); err == nil {
		t.Error("composeDSN accepted an unparseable dsn")
	}
}
