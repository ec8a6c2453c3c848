package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port == 0 {
		t.Error("server port should have a default")
	}
	if cfg.Database.Host == "" {
		t.Error("database host should have a default")
	}
	if cfg.NLP.BaseURL == "" {
		t.Error("nlp base URL should have a default")
	}
	if cfg.SMTP.Enabled {
		t.Error("smtp should be disabled by default")
	}
}

func TestGetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.local",
		Port:     5432,
		User:     "bothub",
		Password: "secret",
		DBName:   "bothub",
		SSLMode:  "disable",
	}

	dsn := cfg.GetDSN()
	want := "host=db.local port=5432 user=bothub password=secret dbname=bothub sslmode=disable"
	if dsn != want {
		t.Errorf("GetDSN() = %q, want %q", dsn, want)
	}
}

func TestGetAddr(t *testing.T) {
	server := ServerConfig{Host: "0.0.0.0", Port: 8080}
	if got := server.GetAddr(); got != "0.0.0.0:8080" {
		t.Errorf("server addr = %q", got)
	}

	redis := RedisConfig{Host: "localhost", Port: 6379}
	if got := redis.GetAddr(); got != "localhost:6379" {
		t.Errorf("redis addr = %q", got)
	}
}
