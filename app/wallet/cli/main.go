package main

import "github.com/scholarstream/escrow/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
