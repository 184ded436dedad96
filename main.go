package main

import "github.com/dh1tw/graphAudio/cmd"

func main() {
	cmd.Execute()
}
