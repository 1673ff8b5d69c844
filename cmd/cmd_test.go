package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kaminglui/circuit-sim/pkg/netlist"
)

const dividerDeck = `divider
V1 in 0 10
R1 in out 1k
R2 out 0 1k
.dc V1 0 2 1
.end
`

const rcDeck = `rc
V1 in 0 5
R1 in out 1k
C1 out 0 1u
.tran 10u 1m uic
.end
`

const dividerSchematic = `
[[components]]
id = "V1"
kind = "VDC"
pins = [{ x = 0.0, y = 0.0 }, { x = 0.0, y = 10.0, net = "GND" }]
params = { V = 10 }

[[components]]
id = "R1"
kind = "R"
pins = [{ x = 0.0, y = 0.0 }, { x = 10.0, y = 0.0 }]

[[components]]
id = "R2"
kind = "R"
pins = [{ x = 10.0, y = 0.0 }, { x = 10.0, y = 10.0, net = "GND" }]
`

// resetFlags restores every flag to its default between runs of the shared
// root command.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
}

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	resetFlags(rootCmd)
	for _, c := range rootCmd.Commands() {
		resetFlags(c)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOPCommand(t *testing.T) {
	out, err := execute(t, context.Background(), "op", writeFile(t, "divider.cir", dividerDeck))
	if err != nil {
		t.Fatalf("op: %v\n%s", err, out)
	}
	for _, want := range []string{"V(out)", "5.000 V", "I(V1)", "-5.000 mA"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestOPCommandSchematic(t *testing.T) {
	out, err := execute(t, context.Background(), "op", "--backend", "sparse", writeFile(t, "divider.toml", dividerSchematic))
	if err != nil {
		t.Fatalf("op: %v\n%s", err, out)
	}
	if !strings.Contains(out, "V(N002)") || !strings.Contains(out, "5.000 V") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestOPCommandUnsupportedFile(t *testing.T) {
	_, err := execute(t, context.Background(), "op", writeFile(t, "divider.xml", "<x/>"))
	if !errors.Is(err, netlist.ErrFormat) {
		t.Errorf("op error = %v, want ErrFormat", err)
	}
}

func TestTranCommand(t *testing.T) {
	path := writeFile(t, "rc.cir", rcDeck)
	plot := filepath.Join(t.TempDir(), "rc.png")

	out, err := execute(t, context.Background(), "tran", path, "--plot", plot, "--probe", "out", "--quiet")
	if err != nil {
		t.Fatalf("tran: %v\n%s", err, out)
	}
	if !strings.Contains(out, "plot written") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if st, err := os.Stat(plot); err != nil || st.Size() == 0 {
		t.Errorf("plot file: %v", err)
	}
}

func TestTranCommandFlags(t *testing.T) {
	path := writeFile(t, "rc.cir", rcDeck)
	out, err := execute(t, context.Background(), "tran", path, "--stop", "2e-5", "--step", "1e-5", "--probe", "out")
	if err != nil {
		t.Fatalf("tran: %v\n%s", err, out)
	}
	if rows := strings.Count(out, "TIME="); rows != 2 {
		t.Errorf("rows = %d, want 2:\n%s", rows, out)
	}

	if _, err := execute(t, context.Background(), "tran", path, "--probe", "nowhere"); err == nil {
		t.Error("unknown probe accepted")
	}
}

func TestSweepCommand(t *testing.T) {
	out, err := execute(t, context.Background(), "sweep", writeFile(t, "divider.cir", dividerDeck), "--probe", "out")
	if err != nil {
		t.Fatalf("sweep: %v\n%s", err, out)
	}
	if rows := strings.Count(out, "SWEEP="); rows != 3 {
		t.Errorf("rows = %d, want 3:\n%s", rows, out)
	}
	if !strings.Contains(out, "V(out)=500.000 mV") || !strings.Contains(out, "V(out)=1.000 V") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestNodesCommand(t *testing.T) {
	out, err := execute(t, context.Background(), "nodes", writeFile(t, "divider.toml", dividerSchematic))
	if err != nil {
		t.Fatalf("nodes: %v\n%s", err, out)
	}
	for _, want := range []string{"Nodes (3)", "N001", "N002", "R1", "VDC"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWatchCommandStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := execute(t, ctx, "watch", writeFile(t, "divider.cir", dividerDeck))
	if err != nil {
		t.Fatalf("watch: %v\n%s", err, out)
	}
	if !strings.Contains(out, "5.000 V") || !strings.Contains(out, "watching") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestProbeKeys(t *testing.T) {
	results := map[string][]float64{"TIME": nil, "V(a)": nil, "V(b)": nil, "I(V1)": nil}

	got, err := probeKeys(nil, results)
	if err != nil || strings.Join(got, ",") != "V(a),V(b),I(V1)" {
		t.Errorf("probeKeys(nil) = %v, %v", got, err)
	}

	got, err = probeKeys([]string{"b", "I(V1)"}, results)
	if err != nil || strings.Join(got, ",") != "V(b),I(V1)" {
		t.Errorf("probeKeys = %v, %v", got, err)
	}

	if _, err := probeKeys([]string{"c"}, results); err == nil {
		t.Error("missing probe accepted")
	}
}
