package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/crossing"
	"github.com/pkg/errors"
)

// DOTGenerator generates Graphviz DOT representations of signal plans
type DOTGenerator struct {
	plan    *crossing.SignalPlan
	options DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowGuards      bool
	ShowActions     bool
	RankDirection   string // "TB", "LR", "BT", "RL"
	NodeShape       string
	TransitionStyle string
}

// DefaultDOTOptions returns the default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowGuards:      true,
		ShowActions:     true,
		RankDirection:   "LR",
		NodeShape:       "circle",
		TransitionStyle: "solid",
	}
}

// NewDOTGenerator creates a new DOT generator for the given plan
func NewDOTGenerator(plan *crossing.SignalPlan, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{
		plan:    plan,
		options: opts,
	}
}

// Generate creates a DOT representation of the plan
func (g *DOTGenerator) Generate() (string, error) {
	if g.plan == nil {
		return "", errors.New("no signal plan to render")
	}

	var dot strings.Builder

	dot.WriteString("digraph SignalPlan {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  node [shape=%s style=filled];\n", g.options.NodeShape))
	dot.WriteString("  edge [fontsize=10];\n\n")

	g.generateStates(&dot)
	g.generateTransitions(&dot)

	dot.WriteString("}\n")

	return dot.String(), nil
}

// generateStates writes one node per color in declaration order
func (g *DOTGenerator) generateStates(dot *strings.Builder) {
	initial := g.plan.GetInitialState()

	dot.WriteString("  // States\n")
	for _, id := range g.plan.StateIDs() {
		label := string(id)
		penwidth := 1
		if id == initial {
			label += "\\n(initial)"
			penwidth = 3
		}
		dot.WriteString(fmt.Sprintf("  \"%s\" [fillcolor=%s penwidth=%d label=\"%s\"];\n",
			id, fillColor(id), penwidth, label))
	}
	dot.WriteString("\n")
}

// generateTransitions writes one edge per transition, labelled by event
func (g *DOTGenerator) generateTransitions(dot *strings.Builder) {
	transitions := g.plan.GetTransitions()

	dot.WriteString("  // Transitions\n")
	for _, from := range g.plan.StateIDs() {
		for _, t := range transitions[from] {
			label := t.Event
			if g.options.ShowGuards && t.Guard != nil {
				label += " [guard]"
			}
			if g.options.ShowActions && t.Action != nil {
				label += " / action"
			}
			style := g.options.TransitionStyle
			if t.IsSelf() {
				style = "dashed"
			}
			dot.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [label=\"%s\" style=%s];\n",
				t.From, t.To, label, style))
		}
	}
}

func fillColor(id crossing.LightState) string {
	switch id {
	case crossing.Red:
		return "tomato"
	case crossing.Yellow:
		return "gold"
	case crossing.Green:
		return "palegreen"
	default:
		return "lightgray"
	}
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return errors.Wrapf(os.WriteFile(filename, []byte(content), 0644), "write %s", filename)
}

// SVGGenerator generates SVG representations by calling Graphviz
type SVGGenerator struct {
	dotGenerator *DOTGenerator
}

// NewSVGGenerator creates a new SVG generator
func NewSVGGenerator(plan *crossing.SignalPlan, options ...DOTOptions) *SVGGenerator {
	return &SVGGenerator{
		dotGenerator: NewDOTGenerator(plan, options...),
	}
}

// Generate creates an SVG representation of the plan
func (g *SVGGenerator) Generate() (string, error) {
	dotContent, err := g.dotGenerator.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", errors.Wrap(err, "failed to execute dot command (make sure Graphviz is installed)")
	}

	return out.String(), nil
}

// GenerateSVG creates an SVG representation of the plan
func (g *DOTGenerator) GenerateSVG() (string, error) {
	svgGen := &SVGGenerator{dotGenerator: g}
	return svgGen.Generate()
}
