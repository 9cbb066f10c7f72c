// Command scene-check reads scene files and prints what they contain.
//
// Each file is read twice: once with a generic s-expression reader, which
// reports the raw shape of the file, and once with the scene decoder.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/chewxy/sexp"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/scene"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: scene-check <scene_file>...")
		os.Exit(1)
	}

	failed := false
	for _, path := range os.Args[1:] {
		if err := check(path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func check(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d bytes\n", path, info.Size())

	exprs, err := sexp.Parse(file)
	if err != nil {
		fmt.Printf("  raw: unreadable (%v)\n", err)
	} else {
		leaves := 0
		for _, e := range exprs {
			if e.IsLeaf() {
				leaves++
			} else {
				leaves += e.LeafCount()
			}
		}
		fmt.Printf("  raw: %d expressions, %d leaves\n", len(exprs), leaves)
	}

	if _, err := file.Seek(0, 0); err != nil {
		return err
	}
	fig, err := scene.Decode(file)
	if err != nil {
		return err
	}

	fmt.Printf("  region %q, %d panels\n", fig.Region, len(fig.Panels))
	for _, p := range fig.Panels {
		fmt.Printf("  panel %s (%s): %d series, %d primitives\n", p.Name, p.Kind, len(p.Series), len(p.Layer.Primitives))
		counts := make(map[string]int)
		for _, prim := range p.Layer.Primitives {
			counts[kindOf(prim)]++
		}
		kinds := make([]string, 0, len(counts))
		for k := range counts {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Printf("    %-9s %d\n", k, counts[k])
		}
		b := p.Frame()
		fmt.Printf("    frame     [%g, %g] x [%g, %g]\n", b.Min.X, b.Max.X, b.Min.Y, b.Max.Y)
	}

	diags := fig.Diagnostics()
	if len(diags) > 0 {
		fmt.Printf("  %d diagnostics\n", len(diags))
		for _, d := range diags {
			fmt.Printf("    [%s] %s\n", scene.Class(d.Err), d.String())
		}
	}
	return nil
}

func kindOf(p geom.Primitive) string {
	switch p.(type) {
	case geom.Line:
		return "line"
	case geom.Polyline:
		return "polyline"
	case geom.Polygon:
		return "polygon"
	case geom.Ellipse:
		return "ellipse"
	case geom.Arc:
		return "arc"
	case geom.Text:
		return "text"
	case geom.Markers:
		return "markers"
	}
	return fmt.Sprintf("%T", p)
}
