package seqgraph_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/pathlattice/pkg/seqgraph"
)

func Example() {
	g, err := seqgraph.ReadJSON(strings.NewReader(`{
		"nodes": [{"id": 10, "letter": "A"}, {"id": 20, "letter": "C"},
		          {"id": 30, "letter": "T"}, {"id": 40, "letter": "G"}],
		"edges": [{"from": 10, "to": 20}, {"from": 10, "to": 30}]
	}`))
	if err != nil {
		panic(err)
	}

	comps, err := g.Components()
	if err != nil {
		panic(err)
	}
	for _, comp := range comps {
		var parts []string
		for _, c := range comp {
			parts = append(parts, fmt.Sprintf("%d:%c", g.ID(c), g.Letter(c)))
		}
		fmt.Println(strings.Join(parts, " "))
	}
	// Output:
	// 10:A 20:C 30:T
	// 40:G
}

func ExampleFromSequence() {
	g, _ := seqgraph.FromSequence("ACGT")
	fmt.Println(g.Len(), g.EdgeCount(), g)
	// Output: 4 3 ACGT
}
