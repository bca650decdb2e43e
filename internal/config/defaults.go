package config

import (
	"time"

	"github.com/spf13/viper"
)

// applyDefaults registers the built-in defaults on the given viper instance.
// Every key read anywhere in the codebase must have a default here so a bare
// process starts without a config file.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})
	v.SetDefault("log.error_output_paths", []string{"stderr"})

	v.SetDefault("corpus.dir", "data")

	v.SetDefault("cache.url", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.pool_size", 10)
	v.SetDefault("cache.drug_ttl", 24*time.Hour)
	v.SetDefault("cache.search_ttl", time.Hour)
	v.SetDefault("cache.market_ttl", 7*24*time.Hour)
	v.SetDefault("cache.paper_ttl", 30*24*time.Hour)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.migrations_path", "migrations")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.write_timeout", 10*time.Second)

	v.SetDefault("auth.access_token_ttl", 30*time.Minute)
	v.SetDefault("auth.refresh_token_ttl", 7*24*time.Hour)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.window", time.Hour)
	v.SetDefault("rate_limit.basic_limit", 100)
	v.SetDefault("rate_limit.professional_limit", 1000)

	v.SetDefault("external.timeout", 30*time.Second)
	v.SetDefault("external.live_evidence_deadline", 10*time.Second)

	v.SetDefault("external.pubmed.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	v.SetDefault("external.pubmed.api_key", "")
	v.SetDefault("external.pubmed.max_concurrent", 3)
	v.SetDefault("external.pubmed.rate_per_second", 3)

	v.SetDefault("external.clinical_trials.base_url", "https://clinicaltrials.gov/api/v2")
	v.SetDefault("external.clinical_trials.api_key", "")
	v.SetDefault("external.clinical_trials.max_concurrent", 5)
	v.SetDefault("external.clinical_trials.rate_per_second", 5)

	v.SetDefault("external.drugbank.base_url", "https://go.drugbank.com/api")
	v.SetDefault("external.drugbank.api_key", "")
	v.SetDefault("external.drugbank.max_concurrent", 2)
	v.SetDefault("external.drugbank.rate_per_second", 1)
}
