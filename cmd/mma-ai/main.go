package main

import "github.com/DanielCasali/mma-ai/cmd/mma-ai/cmd"

func main() {
	cmd.Execute()
}
