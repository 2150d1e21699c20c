// main is the entry point for the quizscale CLI.
package main

import (
	"github.com/huangsam/quizscale/cmd"
	"github.com/huangsam/quizscale/internal/contract"
	"github.com/huangsam/quizscale/internal/iocache"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)
	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
