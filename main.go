package main

import "mailsift/cmd"

func main() {
	cmd.Execute()
}
