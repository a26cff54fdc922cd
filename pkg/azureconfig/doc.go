// Package azureconfig maps a requested model to an Azure OpenAI deployment group,
// producing Azure options, base URL and headers for the upstream client.
//
// The configuration is loaded from YAML, validated, and compiled into an immutable
// Snapshot. A Holder keeps the current Snapshot and can be refreshed by Watch
// when the configuration file changes.
package azureconfig
