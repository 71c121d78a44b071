/*
Package dsl provides a fluent Go builder for constructing easel diagrams
programmatically.

It lets tests and embedding hosts define diagrams with type-safe chained
calls instead of YAML documents, which keeps fixtures next to the code
that exercises them.

Example usage:

	package main

	import (
		"github.com/aretw0/easel/pkg/dsl"
	)

	func main() {
		b := dsl.New("checkout")

		b.Node("api").
			Named("API").
			Typed("service").
			At(40, 60).
			Output("api-out", 152, 42)

		b.Node("db").
			Named("Database").
			Typed("postgres").
			At(400, 60).
			Input("db-in", -8, 42)

		b.Connect("api-out", "db-in")

		// The resulting loader can be passed to easel.New via WithLoader.
		loader, err := b.Loader()
		_ = loader
		_ = err
	}
*/
package dsl
