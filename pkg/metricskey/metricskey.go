package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsCredentialsResolved is base for counter metric for resolved endpoint credentials
	StatsCredentialsResolved = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_credentials_resolved",
		Help:         "stats_credentials_resolved provides total endpoint credentials resolved",
		RequiredTags: []string{"endpoint", "source"},
	}

	StatsCredentialsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_credentials_failed",
		Help:         "stats_credentials_failed provides total failed credential resolutions",
		RequiredTags: []string{"endpoint", "kind"},
	}

	StatsVectorStoreCacheHits = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_vector_store_cache_hits",
		Help:         "stats_vector_store_cache_hits provides total assistant vector store cache hits",
		RequiredTags: []string{"cache"},
	}

	StatsVectorStoreCacheMisses = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_vector_store_cache_misses",
		Help:         "stats_vector_store_cache_misses provides total assistant vector store cache misses",
		RequiredTags: []string{"cache"},
	}

	StatsVectorStoresCreated = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_vector_stores_created",
		Help:         "stats_vector_stores_created provides total vector stores created for assistants",
		RequiredTags: []string{"cache"},
	}
)

// Perf
var (
	PerfInitializeClient = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_initialize_client",
		Help:         "perf_initialize_client provides duration of endpoint client initialization",
		RequiredTags: []string{"endpoint"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfInitializeClient,
	&StatsCredentialsFailed,
	&StatsCredentialsResolved,
	&StatsVectorStoreCacheHits,
	&StatsVectorStoreCacheMisses,
	&StatsVectorStoresCreated,
}
