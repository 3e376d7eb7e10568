package main

import (
	"fmt"

	"github.com/spf13/pflag"
)

// mustBindFlag binds a flag to a config key. Binding only fails for a nil flag,
// which is a programming error.
func mustBindFlag(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag for %s: %v", key, err))
	}
}
