package config_test

import (
	"fmt"

	"github.com/c360/bipstream/config"
)

func ExampleLoader() {
	loader := config.NewLoader()
	loader.Set("buffer.capacity", 1024)
	loader.Set("workload.produce.max", 256)

	cfg, err := loader.Load("")
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(cfg.Buffer.Capacity, cfg.Buffer.Mode)
	fmt.Println(cfg.Workload.Produce.Min, cfg.Workload.Produce.Max)
	// Output:
	// 1024 locked
	// 10 256
}

func ExampleConfig_Validate() {
	cfg := config.Default()
	cfg.Buffer.Mode = "ring"

	fmt.Println(cfg.Validate())
	// Output:
	// Config.Validate: field check failed: invalid configuration: buffer.mode must be "locked" or "stream", got "ring"
}
