package main

import "github.com/andresmejia3/poseparser/cmd"

func main() {
	cmd.Execute()
}
