// Package main is the entry point for fieldresolver.
package main

func main() {
	Execute()
}
