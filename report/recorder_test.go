package report_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memfoot/analysis"
	"github.com/sarchlab/memfoot/footprint"
	"github.com/sarchlab/memfoot/report"
)

var _ = Describe("Recorder", func() {
	var (
		tempDir string
		path    string
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "recorder-test")
		Expect(err).NotTo(HaveOccurred())
		path = filepath.Join(tempDir, "loop")
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	It("should store iterations and the estimate", func() {
		r := report.NewRecorder(path)

		r.ObserveIteration(&analysis.IterationResult{
			Index:        1,
			Contribution: footprint.Contribution{Mi: 2, Ci: 2},
			SumOfMiCi:    4,
		})
		r.ObserveIteration(&analysis.IterationResult{
			Index:        2,
			Contribution: footprint.Contribution{Mi: 3, Ci: 2, Ri: 1},
			SumOfMiCi:    10,
			SumOfRi:      1,
		})
		r.ObserveReport(&analysis.Report{N: 10, Cost: 2, SumOfMiCi: 10, SumOfRi: 1})

		Expect(r.Tables()).To(ContainElements(report.IterationTable, report.EstimateTable))
		r.Close()

		Expect(path + ".sqlite3").To(BeAnExistingFile())
	})
})
