// Package app contains the core application logic. It wires the registry,
// the tree loaders and the engine pipeline (normalize, resolve, schedule,
// execute) together, decoupled from any specific entrypoint like a CLI.
package app
