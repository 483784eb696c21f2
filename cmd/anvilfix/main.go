// Command anvilfix repairs the chunk location table of region files.
package main

func main() {
	execute()
}
