// Package config defines the format-agnostic model of a configuration tree:
// sections of named sub-configurations, each describing how to build one
// object from a seed value, a producer factory and an ordered list of steps.
// Loaders translate their source format into this model; the engine packages
// (normalize, resolve, scheduler, executor) operate on it exclusively.
package config
