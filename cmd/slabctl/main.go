// Command slabctl runs and inspects the slab allocator.
package main

func main() {
	execute()
}
