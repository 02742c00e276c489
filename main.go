package main

import "github.com/philipparndt/glb2step/internal/cmd"

func main() {
	cmd.Parse()
}
