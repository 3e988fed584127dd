package config_test

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/memfoot/config"
	"github.com/sarchlab/memfoot/trace"
)

var _ = Describe("Config", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "config-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	It("should have valid defaults", func() {
		cfg := config.Default()
		Expect(cfg.SharedMemoryName).To(Equal(trace.DefaultSharedMemoryName))
		Expect(cfg.MaxRecords).To(BeZero())
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.Level()).To(Equal(logrus.InfoLevel))
	})

	It("should keep defaults for fields missing from the file", func() {
		path := filepath.Join(tempDir, "memfoot.json")
		Expect(os.WriteFile(path, []byte(`{"max_records": 100, "log_level": "debug"}`), 0644)).To(Succeed())

		cfg, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.MaxRecords).To(Equal(uint64(100)))
		Expect(cfg.Level()).To(Equal(logrus.DebugLevel))
		Expect(cfg.L1).To(Equal(config.Default().L1))
	})

	It("should round-trip through Save and Load", func() {
		cfg := config.Default()
		cfg.CacheReplay = true
		cfg.L1.Size = 32 * 1024
		cfg.RecordPath = "loop"

		path := filepath.Join(tempDir, "saved.json")
		Expect(cfg.Save(path)).To(Succeed())

		loaded, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(cfg))
	})

	It("should fail on unreadable or malformed files", func() {
		_, err := config.Load(filepath.Join(tempDir, "missing.json"))
		Expect(err).To(HaveOccurred())

		path := filepath.Join(tempDir, "bad.json")
		Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())
		_, err = config.Load(path)
		Expect(err).To(HaveOccurred())
	})

	It("should report every invalid field", func() {
		cfg := config.Default()
		cfg.SharedMemoryName = ""
		cfg.MaxRangeBytes = 0
		cfg.LogLevel = "loud"
		cfg.CacheReplay = true
		cfg.L1.BlockSize = 0

		err := cfg.Validate()
		Expect(err).To(HaveOccurred())

		merr, ok := err.(*multierror.Error)
		Expect(ok).To(BeTrue())
		Expect(merr.Errors).To(HaveLen(4))
	})

	It("should only check cache geometry when replay is enabled", func() {
		cfg := config.Default()
		cfg.L2.Associativity = 0
		Expect(cfg.Validate()).To(Succeed())

		cfg.CacheReplay = true
		Expect(cfg.Validate()).NotTo(Succeed())
	})

	It("should clone independently", func() {
		cfg := config.Default()
		clone := cfg.Clone()
		clone.L1.Size = 1
		clone.LogLevel = "warn"

		Expect(cfg.L1.Size).NotTo(Equal(1))
		Expect(cfg.LogLevel).To(Equal("info"))
	})
})
