package service_test

import (
	"context"

	"github.com/ibagroup-eu/vf-job-storage/internal/service"
	"github.com/ibagroup-eu/vf-job-storage/internal/store"
	"github.com/ibagroup-eu/vf-job-storage/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("connection service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		svc    *service.ConnectionService
	)

	BeforeAll(func() {
		db, err := store.InitDB(newTestConfig())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())
		svc = service.NewConnectionService(s)
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM hash_entries;")
	})

	It("generates a key when none is given", func() {
		key, err := svc.Create(context.TODO(), "p1", model.Connection{Value: map[string]any{"host": "db"}})
		Expect(err).To(BeNil())
		Expect(key).NotTo(BeEmpty())

		connection, err := svc.Get(context.TODO(), "p1", key)
		Expect(err).To(BeNil())
		Expect(connection.Key).To(Equal(key))
		Expect(connection.Value).To(HaveKeyWithValue("host", "db"))
	})

	It("overwrites on update", func() {
		_, err := svc.Create(context.TODO(), "p1", model.Connection{Key: "pg", Value: map[string]any{"host": "a"}})
		Expect(err).To(BeNil())
		Expect(svc.Update(context.TODO(), "p1", model.Connection{Key: "pg", Value: map[string]any{"host": "b"}})).To(BeNil())

		connections, err := svc.GetAll(context.TODO(), "p1")
		Expect(err).To(BeNil())
		Expect(connections).To(HaveLen(1))
		Expect(connections[0].Value).To(HaveKeyWithValue("host", "b"))
	})

	It("fails when the connection does not exist", func() {
		_, err := svc.Get(context.TODO(), "p1", "missing")
		_, ok := err.(*service.ErrResourceNotFound)
		Expect(ok).To(BeTrue())
	})

	It("deletes one or all connections", func() {
		_, err := svc.Create(context.TODO(), "p1", model.Connection{Key: "a"})
		Expect(err).To(BeNil())
		_, err = svc.Create(context.TODO(), "p1", model.Connection{Key: "b"})
		Expect(err).To(BeNil())

		Expect(svc.Delete(context.TODO(), "p1", "a")).To(BeNil())
		connections, err := svc.GetAll(context.TODO(), "p1")
		Expect(err).To(BeNil())
		Expect(connections).To(HaveLen(1))

		Expect(svc.DeleteAll(context.TODO(), "p1")).To(BeNil())
		connections, err = svc.GetAll(context.TODO(), "p1")
		Expect(err).To(BeNil())
		Expect(connections).To(BeEmpty())
	})
})
