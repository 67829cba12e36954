// Package config provides configuration for the bipstream driver.
//
// Config holds the buffer size and mode, the workload shape (data size, seed,
// produce and consume chunk ranges, producer rate), logging and the metrics
// endpoint. Validate checks every field and returns errors wrapping
// errors.ErrInvalidConfig.
//
// Loader resolves a Config from three sources, lowest priority first:
//
//  1. Built-in defaults (Default)
//  2. An optional YAML file
//  3. Environment variables prefixed with BIPSTREAM, with dots replaced by
//     underscores (BIPSTREAM_WORKLOAD_PRODUCE_MAX)
//
// Values set through Loader.Set, typically from command line flags, override all three.
//
// Example file:
//
//	buffer:
//	  capacity: 4096
//	  mode: stream
//	workload:
//	  data_size: 1048576
//	  produce: {min: 64, max: 2048}
//	  consume: {min: 64, max: 2048}
//	metrics:
//	  enabled: true
//	  port: 9090
package config
