package main

import "github.com/yuriiter/freccia/cmd"

func main() {
	cmd.Execute()
}
