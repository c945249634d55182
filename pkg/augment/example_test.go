package augment_test

import (
	"fmt"

	"github.com/matzehuels/augment/pkg/augment"
	"github.com/matzehuels/augment/pkg/geom"
)

func ExampleChain() {
	src := geom.Extent{W: 400, H: 300}
	box := geom.Some(geom.NewBox(100, 100, 200, 200))

	trace, err := augment.Chain(src, box,
		augment.Crop{X1: 50, Y1: 50, X2: 350, Y2: 250},
		augment.Scale{FX: 2, FY: 2},
		augment.Translate{TX: 10, TY: -20},
	)
	if err != nil {
		panic(err)
	}
	for _, s := range trace.Steps {
		fmt.Printf("%-9s %-8v %v\n", s.Op, s.Extent, s.Box)
	}
	// Output:
	// crop      300x200  (50, 50, 150, 150)
	// scale     600x400  (100, 100, 300, 300)
	// translate 600x400  (110, 80, 310, 280)
}

func ExampleParseRecipe() {
	r, err := augment.ParseRecipe([]byte(`
name = "tilt"

[[steps]]
op = "rotate"
angle = 10
`))
	if err != nil {
		panic(err)
	}
	ops, _ := r.Ops()
	fmt.Println(r.Name, len(ops), ops[0])
	// Output:
	// tilt 1 rotate 10°, keep resolution
}
