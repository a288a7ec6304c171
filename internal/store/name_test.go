package store_test

import (
	"context"

	st "github.com/ibagroup-eu/vf-job-storage/internal/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("name index store", Ordered, func() {
	var (
		s      st.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := st.InitDB(newTestConfig())
		Expect(err).To(BeNil())

		s = st.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	Context("reserve", func() {
		It("binds a free name", func() {
			Expect(s.Names().Reserve(context.TODO(), "project:p1", "job", "j1", "etl")).To(BeNil())

			id, err := s.Names().Lookup(context.TODO(), "project:p1", "job", "etl")
			Expect(err).To(BeNil())
			Expect(id).To(Equal("j1"))
		})

		It("refuses a name owned by another entity", func() {
			Expect(s.Names().Reserve(context.TODO(), "project:p1", "job", "j1", "etl")).To(BeNil())

			err := s.Names().Reserve(context.TODO(), "project:p1", "job", "j2", "etl")
			Expect(err).To(MatchError(st.ErrDuplicateKey))
		})

		It("accepts the same name for the same entity", func() {
			Expect(s.Names().Reserve(context.TODO(), "project:p1", "job", "j1", "etl")).To(BeNil())
			Expect(s.Names().Reserve(context.TODO(), "project:p1", "job", "j1", "etl")).To(BeNil())
		})

		It("moves an entity to its new name", func() {
			Expect(s.Names().Reserve(context.TODO(), "project:p1", "job", "j1", "etl")).To(BeNil())
			Expect(s.Names().Reserve(context.TODO(), "project:p1", "job", "j1", "load")).To(BeNil())

			_, err := s.Names().Lookup(context.TODO(), "project:p1", "job", "etl")
			Expect(err).To(MatchError(st.ErrRecordNotFound))

			names, err := s.Names().Names(context.TODO(), "project:p1", "job")
			Expect(err).To(BeNil())
			Expect(names).To(Equal([]string{"load"}))
		})

		It("scopes names by partition and kind", func() {
			Expect(s.Names().Reserve(context.TODO(), "project:p1", "job", "j1", "etl")).To(BeNil())
			Expect(s.Names().Reserve(context.TODO(), "project:p2", "job", "j2", "etl")).To(BeNil())
			Expect(s.Names().Reserve(context.TODO(), "project:p1", "pipeline", "x1", "etl")).To(BeNil())
		})

		AfterEach(func() {
			gormdb.Exec("DELETE FROM entity_names;")
		})
	})

	Context("release", func() {
		It("frees the name of an entity", func() {
			Expect(s.Names().Reserve(context.TODO(), "project:p1", "job", "j1", "etl")).To(BeNil())
			Expect(s.Names().Release(context.TODO(), "project:p1", "job", "j1")).To(BeNil())
			Expect(s.Names().Reserve(context.TODO(), "project:p1", "job", "j2", "etl")).To(BeNil())
		})

		It("frees every name of a partition", func() {
			Expect(s.Names().Reserve(context.TODO(), "project:p1", "job", "j1", "a")).To(BeNil())
			Expect(s.Names().Reserve(context.TODO(), "project:p1", "job", "j2", "b")).To(BeNil())

			Expect(s.Names().ReleaseAll(context.TODO(), "project:p1", "job")).To(BeNil())

			names, err := s.Names().Names(context.TODO(), "project:p1", "job")
			Expect(err).To(BeNil())
			Expect(names).To(BeEmpty())
		})

		AfterEach(func() {
			gormdb.Exec("DELETE FROM entity_names;")
		})
	})
})
