// Command ownctl runs the recurring jobs by hand and hosts a standalone
// scheduler worker.
package main

func main() {
	Execute()
}
