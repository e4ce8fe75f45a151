package integration

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/lakehouse-bootstrap/internal/catalog"
	"github.com/stacklok/lakehouse-bootstrap/internal/catalog/unity/unitytest"
	"github.com/stacklok/lakehouse-bootstrap/internal/config"
	"github.com/stacklok/lakehouse-bootstrap/internal/reconciler"
	"github.com/stacklok/lakehouse-bootstrap/internal/report"
	"github.com/stacklok/lakehouse-bootstrap/test-integration/bootstrap/helpers"
)

const unityToken = "integration-token"

var _ = Describe("Unity Catalog Integration", Label("unity"), func() {
	var tempDir string

	BeforeEach(func() {
		tempDir = createTempDir("unity-test-")
	})

	AfterEach(func() {
		cleanupTempDir(tempDir)
	})

	newHelper := func(server *unitytest.Server, env config.EnvironmentConfig) *helpers.BootstrapTestHelper {
		backend := helpers.UnityBackend(tempDir, server.URL, unityToken)
		return helpers.NewBootstrapTestHelper(ctx, helpers.WriteConfigYAML(tempDir, env, backend))
	}

	Context("Fresh workspace", func() {
		It("should create every resource in dependency order", func() {
			server := unitytest.NewServer(GinkgoT(),
				unitytest.WithToken(unityToken),
				unitytest.WithCredential(helpers.CredentialName))
			helper := newHelper(server, helpers.EcomEnvironment())

			rep, err := helper.Reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.Succeeded()).To(BeTrue(), rep.Summary())
			Expect(server.Posts()).To(Equal([]string{
				"catalogs/ecom_lakehouse",
				"external-locations/landing_ext_loc",
				"external-locations/gold_ext_loc",
				"schemas/ecom_lakehouse.files",
				"schemas/ecom_lakehouse.bronze",
				"schemas/ecom_lakehouse.silver",
				"schemas/ecom_lakehouse.gold",
				"volumes/ecom_lakehouse.files.landing",
			}))

			gold, ok := server.Object("schemas", "ecom_lakehouse.gold")
			Expect(ok).To(BeTrue())
			Expect(gold).To(HaveKeyWithValue("storage_root", "s3://ecom-lake/gold/"))
		})

		It("should issue no create requests on the second run", func() {
			server := unitytest.NewServer(GinkgoT(),
				unitytest.WithToken(unityToken),
				unitytest.WithCredential(helpers.CredentialName))
			helper := newHelper(server, helpers.EcomEnvironment())

			_, err := helper.Reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Posts()).To(HaveLen(8))

			rep, err := helper.Reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Posts()).To(HaveLen(8))
			Expect(rep.Counts()).To(HaveKeyWithValue(report.OutcomeAlreadyExists, 8))
			Expect(helpers.QualifiedNames(rep)).To(Equal(helpers.ExpectedOrder()))
		})
	})

	Context("Partially provisioned workspace", func() {
		It("should only create what is missing", func() {
			server := unitytest.NewServer(GinkgoT(),
				unitytest.WithToken(unityToken),
				unitytest.WithCredential(helpers.CredentialName),
				unitytest.WithObject("catalogs", "ecom_lakehouse"),
				unitytest.WithObject("external-locations", "landing_ext_loc"),
				unitytest.WithObject("schemas", "ecom_lakehouse.files"))
			helper := newHelper(server, helpers.EcomEnvironment())

			By("planning first")
			plan, err := helper.Plan()
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Posts()).To(BeEmpty())
			Expect(plan.Counts()).To(And(
				HaveKeyWithValue(report.OutcomeAlreadyExists, 3),
				HaveKeyWithValue(report.OutcomeWouldCreate, 5)))

			By("reconciling")
			rep, err := helper.Reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.Succeeded()).To(BeTrue(), rep.Summary())
			Expect(server.Posts()).To(Equal([]string{
				"external-locations/gold_ext_loc",
				"schemas/ecom_lakehouse.bronze",
				"schemas/ecom_lakehouse.silver",
				"schemas/ecom_lakehouse.gold",
				"volumes/ecom_lakehouse.files.landing",
			}))
		})
	})

	Context("Failures", func() {
		It("should stop before creating anything when the credential is missing", func() {
			server := unitytest.NewServer(GinkgoT(), unitytest.WithToken(unityToken))
			helper := newHelper(server, helpers.EcomEnvironment())

			rep, err := helper.Reconcile()
			Expect(err).To(MatchError(catalog.ErrCredentialNotFound))
			Expect(rep).NotTo(BeNil())
			Expect(rep.Entries).To(BeEmpty())
			Expect(server.Posts()).To(BeEmpty())

			saved := helper.LastReport(helpers.CatalogName)
			Expect(saved).NotTo(BeNil())
			Expect(saved.Fatal).NotTo(BeEmpty())
		})

		It("should isolate a failing external location to its dependents", func() {
			server := unitytest.NewServer(GinkgoT(),
				unitytest.WithToken(unityToken),
				unitytest.WithCredential(helpers.CredentialName),
				unitytest.WithFailure("external-locations", "gold_ext_loc", http.StatusInternalServerError))
			helper := newHelper(server, helpers.EcomEnvironment())

			rep, err := helper.Reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.Succeeded()).To(BeFalse())

			outcomes := helpers.Outcomes(rep)
			Expect(outcomes).To(HaveKeyWithValue("gold_ext_loc", report.OutcomeFailed))
			Expect(outcomes).To(HaveKeyWithValue("ecom_lakehouse.gold", report.OutcomeFailed))
			Expect(outcomes).To(HaveKeyWithValue("ecom_lakehouse.bronze", report.OutcomeCreated))
			Expect(outcomes).To(HaveKeyWithValue("ecom_lakehouse.files.landing", report.OutcomeCreated))

			gold, found := rep.Lookup(catalog.KindSchema, "ecom_lakehouse.gold")
			Expect(found).To(BeTrue())
			Expect(gold.Err).To(MatchError(reconciler.ErrDependencyUnavailable))
			Expect(server.Posts()).NotTo(ContainElement("schemas/ecom_lakehouse.gold"))
		})

		It("should fail the run when the token is rejected", func() {
			server := unitytest.NewServer(GinkgoT(),
				unitytest.WithToken("another-token"),
				unitytest.WithCredential(helpers.CredentialName))
			helper := newHelper(server, helpers.EcomEnvironment())

			rep, err := helper.Reconcile()
			Expect(err).To(HaveOccurred())
			Expect(rep.Succeeded()).To(BeFalse())
			Expect(server.Posts()).To(BeEmpty())
		})
	})
})
