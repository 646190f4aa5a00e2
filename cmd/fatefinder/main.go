package main

// CA roots for minimal container images without a system trust store.
import _ "github.com/BrandonKowalski/certifiable"

func main() {
	Execute()
}
