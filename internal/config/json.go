package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// jsonConfig mirrors [Config] with JSON tags and string-friendly
// durations so a config file can be written by hand.
type jsonConfig struct {
	App struct {
		NotificationTTL Duration `json:"notification_ttl"`
		Role            string   `json:"role"`
	} `json:"app,omitempty"`

	Remote struct {
		DatabaseURI string `json:"database_uri"`
	} `json:"remote,omitempty"`

	Local struct {
		DBPath     string `json:"db_path"`
		QuotaBytes int64  `json:"quota_bytes"`
	} `json:"local,omitempty"`

	Catalog struct {
		BaseURL         string   `json:"base_url"`
		RequestInterval Duration `json:"request_interval"`
	} `json:"catalog,omitempty"`

	Auth struct {
		TokenSignKey string `json:"token_sign_key"`
		TokenIssuer  string `json:"token_issuer"`
	} `json:"auth,omitempty"`
}

func parseJSON(jsonFilePath string) (*Config, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg jsonConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &Config{
		App: App{
			NotificationTTL: time.Duration(jsonCfg.App.NotificationTTL),
			Role:            jsonCfg.App.Role,
		},
		Remote: Remote{
			DatabaseURI: jsonCfg.Remote.DatabaseURI,
		},
		Local: Local{
			DBPath:     jsonCfg.Local.DBPath,
			QuotaBytes: jsonCfg.Local.QuotaBytes,
		},
		Catalog: Catalog{
			BaseURL:         jsonCfg.Catalog.BaseURL,
			RequestInterval: time.Duration(jsonCfg.Catalog.RequestInterval),
		},
		Auth: Auth{
			TokenSignKey: jsonCfg.Auth.TokenSignKey,
			TokenIssuer:  jsonCfg.Auth.TokenIssuer,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
