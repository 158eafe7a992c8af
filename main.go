/*
DiscTools - A collection of utilities for extracting files and system data from GameCube and Wii disc images.

Copyright © 2025 Hans Bonini
*/
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/hansbonini/disctools/cmd"
	"github.com/hansbonini/disctools/pkg/common"
	"github.com/joho/godotenv"
)

// Version information (injected at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Check for version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		fmt.Printf("DiscTools %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		fmt.Printf("Go Version: %s\n", runtime.Version())
		os.Exit(0)
	}

	// DISCTOOLS_* settings may come from a .env file in the working directory
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		common.LogWarn(common.WarnEnvFileUnreadable, err)
	}

	cmd.Execute()
}
