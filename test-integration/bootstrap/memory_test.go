package integration

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/lakehouse-bootstrap/internal/report"
	"github.com/stacklok/lakehouse-bootstrap/test-integration/bootstrap/helpers"
)

var _ = Describe("Memory Backend Integration", Label("memory"), func() {
	var (
		tempDir string
		helper  *helpers.BootstrapTestHelper
	)

	BeforeEach(func() {
		tempDir = createTempDir("memory-test-")
		configFile := helpers.WriteConfigYAML(tempDir, helpers.EcomEnvironment(), helpers.MemoryBackend())
		helper = helpers.NewBootstrapTestHelper(ctx, configFile)
	})

	AfterEach(func() {
		cleanupTempDir(tempDir)
	})

	Context("Planning", func() {
		It("should report every resource as WouldCreate without persisting", func() {
			rep, err := helper.Plan()
			Expect(err).NotTo(HaveOccurred())

			Expect(rep.Mode).To(Equal(report.ModePlan))
			Expect(helpers.QualifiedNames(rep)).To(Equal(helpers.ExpectedOrder()))
			Expect(rep.Counts()).To(HaveKeyWithValue(report.OutcomeWouldCreate, 8))
			Expect(rep.Succeeded()).To(BeTrue())

			Expect(helper.LastReport(helpers.CatalogName)).To(BeNil())
		})
	})

	Context("Reconciling", func() {
		It("should create every resource and persist the report", func() {
			rep, err := helper.Reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.Succeeded()).To(BeTrue(), rep.Summary())
			Expect(rep.Counts()).To(HaveKeyWithValue(report.OutcomeCreated, 8))

			saved := helper.LastReport(helpers.CatalogName)
			Expect(saved).NotTo(BeNil())
			Expect(saved.RunID).To(Equal(rep.RunID))
			Expect(saved.Backend).To(Equal("memory"))
			Expect(saved.Version).NotTo(BeEmpty())
			Expect(helpers.QualifiedNames(saved)).To(Equal(helpers.ExpectedOrder()))
		})

		It("should replace the persisted report on every run", func() {
			first, err := helper.Reconcile()
			Expect(err).NotTo(HaveOccurred())
			second, err := helper.Reconcile()
			Expect(err).NotTo(HaveOccurred())

			Expect(second.RunID).NotTo(Equal(first.RunID))
			Expect(helper.LastReport(helpers.CatalogName).RunID).To(Equal(second.RunID))
		})
	})
})
