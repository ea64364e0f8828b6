package cmd

import (
	"bytes"
	"os"
	"path"
	"strings"
	"testing"

	gce "github.com/coverbotdev/coverbot/pkg/encoding"

	"github.com/coverbotdev/coverbot/pkg/artifacts/cobertura"
)

const sampleCoverageXML = `<?xml version="1.0" ?>
<coverage version="7.2.7" timestamp="1690000000" lines-valid="2000" lines-covered="1700" line-rate="0.85" branches-covered="300" branches-valid="400" branch-rate="0.75" complexity="12">
	<sources>
		<source>/workspace/src</source>
	</sources>
	<packages>
		<package name="colossalai.kernel" line-rate="0.95" branch-rate="0.9" complexity="4">
			<classes>
				<class name="ops.py" filename="colossalai/kernel/ops.py" complexity="4" line-rate="0.95" branch-rate="0.9">
					<lines>
						<line number="1" hits="12"/>
						<line number="2" hits="0"/>
					</lines>
				</class>
			</classes>
		</package>
		<package name="colossalai.tensor" line-rate="0.55" branch-rate="0.5" complexity="8">
			<classes/>
		</package>
	</packages>
</coverage>
`

// Execute parses the command string into args and runs it against a root
// command built from config, capturing combined output.
func Execute(commandString string, config CLIConfig) (string, error) {
	outBuf := new(bytes.Buffer)

	command := NewRootCommand(config)
	command.SetArgs(strings.Fields(commandString))
	command.SetOut(outBuf)
	command.SetErr(outBuf)
	command.SilenceUsage = true

	err := command.Execute()
	return outBuf.String(), err
}

func AsyncDecoderFunc() AsyncDecoder {
	return gce.NewAsyncDecoder(
		cobertura.NewReportDecoder(),
		cobertura.NewSummaryDecoder(),
	)
}

func MustCreate(filename string, t *testing.T) *os.File {
	f, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func MustOpen(filename string, t *testing.T) *os.File {
	f, err := os.Open(filename)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func writeTempCoverage(t *testing.T) string {
	filename := path.Join(t.TempDir(), "coverage.xml")
	if err := os.WriteFile(filename, []byte(sampleCoverageXML), 0o664); err != nil {
		t.Fatal(err)
	}
	return filename
}

func fileWithBadPermissions(t *testing.T) (filename string) {
	n := path.Join(t.TempDir(), "bad-file")
	f, err := os.Create(n)
	if err != nil {
		t.Fatal(err)
	}

	if err := f.Chmod(0000); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	return n
}

func fileWithBadContent(t *testing.T) (filename string) {
	n := path.Join(t.TempDir(), "bad-file.xml")

	if err := os.WriteFile(n, []byte("{{not xml or json"), 0o664); err != nil {
		t.Fatal(err)
	}

	return n
}
