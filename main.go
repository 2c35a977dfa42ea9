package main

import "github.com/reloquent/modelts/cmd"

func main() {
	cmd.Execute()
}
