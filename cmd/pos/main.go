package main

import "go-pos-store/internal/cmd"

func main() {
	cmd.Execute()
}
