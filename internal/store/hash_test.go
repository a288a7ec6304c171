package store_test

import (
	"context"

	st "github.com/ibagroup-eu/vf-job-storage/internal/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const (
	insertEntryStm = "INSERT INTO hash_entries (partition_key, record_key, value, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP);"
)

var _ = Describe("hash store", Ordered, func() {
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

	Context("get", func() {
		It("returns the stored value", func() {
			tx := gormdb.Exec(insertEntryStm, "connection:p1", "pg", `{"key":"pg"}`)
			Expect(tx.Error).To(BeNil())

			value, err := s.Hash().Get(context.TODO(), "connection:p1", "pg")
			Expect(err).To(BeNil())
			Expect(value).To(Equal(`{"key":"pg"}`))
		})

		It("fails with record not found for an absent key", func() {
			_, err := s.Hash().Get(context.TODO(), "connection:p1", "missing")
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})

		It("does not read across partitions", func() {
			tx := gormdb.Exec(insertEntryStm, "connection:p1", "pg", `{}`)
			Expect(tx.Error).To(BeNil())

			_, err := s.Hash().Get(context.TODO(), "connection:p2", "pg")
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE FROM hash_entries;")
		})
	})

	Context("multi get", func() {
		It("skips absent keys", func() {
			Expect(gormdb.Exec(insertEntryStm, "p", "a", "1").Error).To(BeNil())
			Expect(gormdb.Exec(insertEntryStm, "p", "b", "2").Error).To(BeNil())

			values, err := s.Hash().MultiGet(context.TODO(), "p", []string{"a", "b", "c"})
			Expect(err).To(BeNil())
			Expect(values).To(Equal(map[string]string{"a": "1", "b": "2"}))
		})

		It("returns an empty map without keys", func() {
			values, err := s.Hash().MultiGet(context.TODO(), "p", nil)
			Expect(err).To(BeNil())
			Expect(values).To(BeEmpty())
		})

		AfterEach(func() {
			gormdb.Exec("DELETE FROM hash_entries;")
		})
	})

	Context("put", func() {
		It("overwrites an existing value", func() {
			Expect(s.Hash().Put(context.TODO(), "p", "a", "1")).To(BeNil())
			Expect(s.Hash().Put(context.TODO(), "p", "a", "2")).To(BeNil())

			value, err := s.Hash().Get(context.TODO(), "p", "a")
			Expect(err).To(BeNil())
			Expect(value).To(Equal("2"))

			count := 0
			Expect(gormdb.Raw("SELECT COUNT(*) FROM hash_entries;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("inserts only when absent", func() {
			created, err := s.Hash().PutIfAbsent(context.TODO(), "p", "a", "1")
			Expect(err).To(BeNil())
			Expect(created).To(BeTrue())

			created, err = s.Hash().PutIfAbsent(context.TODO(), "p", "a", "2")
			Expect(err).To(BeNil())
			Expect(created).To(BeFalse())

			value, err := s.Hash().Get(context.TODO(), "p", "a")
			Expect(err).To(BeNil())
			Expect(value).To(Equal("1"))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE FROM hash_entries;")
		})
	})

	Context("delete", func() {
		It("removes only the given keys", func() {
			Expect(gormdb.Exec(insertEntryStm, "p", "a", "1").Error).To(BeNil())
			Expect(gormdb.Exec(insertEntryStm, "p", "b", "2").Error).To(BeNil())

			Expect(s.Hash().Delete(context.TODO(), "p", "a")).To(BeNil())

			entries, err := s.Hash().Entries(context.TODO(), "p")
			Expect(err).To(BeNil())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Key).To(Equal("b"))
		})

		It("is a no-op for an absent key", func() {
			Expect(s.Hash().Delete(context.TODO(), "p", "missing")).To(BeNil())
		})

		It("clears a whole partition", func() {
			Expect(gormdb.Exec(insertEntryStm, "p", "a", "1").Error).To(BeNil())
			Expect(gormdb.Exec(insertEntryStm, "p", "b", "2").Error).To(BeNil())
			Expect(gormdb.Exec(insertEntryStm, "q", "a", "1").Error).To(BeNil())

			Expect(s.Hash().DeleteAll(context.TODO(), "p")).To(BeNil())

			entries, err := s.Hash().Entries(context.TODO(), "p")
			Expect(err).To(BeNil())
			Expect(entries).To(BeEmpty())

			entries, err = s.Hash().Entries(context.TODO(), "q")
			Expect(err).To(BeNil())
			Expect(entries).To(HaveLen(1))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE FROM hash_entries;")
		})
	})
})
