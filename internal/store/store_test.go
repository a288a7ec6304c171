package store_test

import (
	"context"

	st "github.com/ibagroup-eu/vf-job-storage/internal/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Store", Ordered, func() {
	var (
		store  st.Store
		gormDB *gorm.DB
	)

	BeforeAll(func() {
		db, err := st.InitDB(newTestConfig())
		Expect(err).To(BeNil())
		gormDB = db

		store = st.NewStore(db)
		Expect(store).ToNot(BeNil())
		Expect(store.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		store.Close()
	})

	Context("transaction", func() {
		It("writes the record and its name together on commit", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			Expect(store.Names().Reserve(ctx, "project:p1", "job", "j1", "etl")).To(BeNil())
			Expect(store.Hash().Put(ctx, "project:p1", "project:p1:job:j1", `{"id":"j1"}`)).To(BeNil())

			_, cerr := st.Commit(ctx)
			Expect(cerr).To(BeNil())

			count := 0
			err = gormDB.Raw("SELECT COUNT(*) from hash_entries;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(1))

			err = gormDB.Raw("SELECT COUNT(*) from entity_names;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("discards the record and its name on rollback", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			Expect(store.Names().Reserve(ctx, "project:p1", "job", "j1", "etl")).To(BeNil())
			Expect(store.Hash().Put(ctx, "project:p1", "project:p1:job:j1", `{"id":"j1"}`)).To(BeNil())

			// visible inside the transaction
			entries, err := store.Hash().Entries(ctx, "project:p1")
			Expect(err).To(BeNil())
			Expect(entries).To(HaveLen(1))

			_, rerr := st.Rollback(ctx)
			Expect(rerr).To(BeNil())

			count := 0
			err = gormDB.Raw("SELECT COUNT(*) from hash_entries;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(0))

			err = gormDB.Raw("SELECT COUNT(*) from entity_names;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(0))
		})

		It("joins the transaction already carried by the context", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			nested, err := store.NewTransactionContext(ctx)
			Expect(err).To(BeNil())
			Expect(st.FromContext(nested)).To(BeIdenticalTo(st.FromContext(ctx)))

			_, _ = st.Rollback(ctx)
		})

		It("keeps a committed transaction when rolled back afterwards", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())
			Expect(store.Hash().Put(ctx, "project:p1", "project:p1:job:j1", `{"id":"j1"}`)).To(BeNil())

			committed, err := st.Commit(ctx)
			Expect(err).To(BeNil())
			Expect(st.FromContext(committed)).To(BeNil())

			_, err = st.Rollback(ctx)
			Expect(err).ToNot(BeNil())

			count := 0
			Expect(gormDB.Raw("SELECT COUNT(*) from hash_entries;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(1))
		})

		AfterEach(func() {
			gormDB.Exec("DELETE FROM hash_entries;")
			gormDB.Exec("DELETE FROM entity_names;")
		})
	})
})
