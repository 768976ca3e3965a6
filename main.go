// The main package for the sitehound executable.
package main

import "github.com/sitehound/sitehound/cmd"

func main() {
	cmd.Execute()
}
