package service_test

import (
	"context"
	"encoding/json"

	"github.com/ibagroup-eu/vf-job-storage/internal/service"
	"github.com/ibagroup-eu/vf-job-storage/internal/store"
	"github.com/ibagroup-eu/vf-job-storage/internal/store/model"
	"github.com/ibagroup-eu/vf-job-storage/pkg/definition"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const (
	insertEntryStm = "INSERT INTO hash_entries (partition_key, record_key, value, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP);"
)

func newJob(name string) model.Job {
	return model.Job{
		Name: name,
		Definition: definition.Document{
			"graph": []any{map[string]any{"id": "1"}},
		},
		Params: map[string]any{"timeout": "10"},
	}
}

var _ = Describe("job service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		svc    *service.JobService
	)

	BeforeAll(func() {
		db, err := store.InitDB(newTestConfig())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())
		svc = service.NewJobService(s)
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM hash_entries;")
		gormdb.Exec("DELETE FROM entity_names;")
	})

	Context("create", func() {
		It("stores a draft job and derives runnable", func() {
			id, err := svc.Create(context.TODO(), "p1", newJob("etl"))
			Expect(err).To(BeNil())
			Expect(id).NotTo(BeEmpty())

			job, err := svc.Get(context.TODO(), "p1", id)
			Expect(err).To(BeNil())
			Expect(job.ID).To(Equal(id))
			Expect(job.Name).To(Equal("etl"))
			Expect(job.Status).To(Equal(model.StatusDraft))
			Expect(job.Runnable).To(BeTrue())
			Expect(job.Editable).To(BeTrue())
			Expect(job.LastModified).NotTo(BeEmpty())
		})

		It("is not runnable without a graph", func() {
			job := newJob("empty")
			job.Definition = definition.Document{"graph": []any{}}

			id, err := svc.Create(context.TODO(), "p1", job)
			Expect(err).To(BeNil())

			stored, err := svc.Get(context.TODO(), "p1", id)
			Expect(err).To(BeNil())
			Expect(stored.Runnable).To(BeFalse())
		})

		It("writes the record under the project job key", func() {
			id, err := svc.Create(context.TODO(), "p1", newJob("etl"))
			Expect(err).To(BeNil())

			var count int
			tx := gormdb.Raw("SELECT COUNT(*) FROM hash_entries WHERE partition_key = ? AND record_key = ?;", "project:p1", "project:p1:job:"+id).Scan(&count)
			Expect(tx.Error).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("keeps an explicit status", func() {
			job := newJob("etl")
			job.Status = model.Status("Succeeded")

			id, err := svc.Create(context.TODO(), "p1", job)
			Expect(err).To(BeNil())

			stored, err := svc.Get(context.TODO(), "p1", id)
			Expect(err).To(BeNil())
			Expect(stored.Status).To(Equal(model.Status("Succeeded")))
		})

		It("refuses a duplicate name", func() {
			_, err := svc.Create(context.TODO(), "p1", newJob("etl"))
			Expect(err).To(BeNil())

			_, err = svc.Create(context.TODO(), "p1", newJob("etl"))
			Expect(err).NotTo(BeNil())
			_, ok := err.(*service.ErrDuplicateName)
			Expect(ok).To(BeTrue())
			Expect(err.Error()).To(Equal("Job with name 'etl' already exist in project 'p1'"))

			jobs, err := svc.GetAll(context.TODO(), "p1")
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
		})

		It("allows the same name in another project", func() {
			_, err := svc.Create(context.TODO(), "p1", newJob("etl"))
			Expect(err).To(BeNil())
			_, err = svc.Create(context.TODO(), "p2", newJob("etl"))
			Expect(err).To(BeNil())
		})
	})

	Context("get", func() {
		It("fails when the job does not exist", func() {
			_, err := svc.Get(context.TODO(), "p1", "missing")
			Expect(err).NotTo(BeNil())
			_, ok := err.(*service.ErrResourceNotFound)
			Expect(ok).To(BeTrue())
		})

		It("fails on a malformed record", func() {
			tx := gormdb.Exec(insertEntryStm, "project:p1", "project:p1:job:broken", "{not json")
			Expect(tx.Error).To(BeNil())

			_, err := svc.Get(context.TODO(), "p1", "broken")
			Expect(err).NotTo(BeNil())
			_, ok := err.(*service.ErrSerialization)
			Expect(ok).To(BeTrue())
		})

		It("defaults a missing status to draft", func() {
			tx := gormdb.Exec(insertEntryStm, "project:p1", "project:p1:job:old", `{"id":"old","name":"old"}`)
			Expect(tx.Error).To(BeNil())

			job, err := svc.Get(context.TODO(), "p1", "old")
			Expect(err).To(BeNil())
			Expect(job.Status).To(Equal(model.StatusDraft))
		})
	})

	Context("get all", func() {
		It("lists overviews and skips malformed records", func() {
			_, err := svc.Create(context.TODO(), "p1", newJob("a"))
			Expect(err).To(BeNil())
			_, err = svc.Create(context.TODO(), "p1", newJob("b"))
			Expect(err).To(BeNil())
			tx := gormdb.Exec(insertEntryStm, "project:p1", "project:p1:job:broken", "{not json")
			Expect(tx.Error).To(BeNil())

			jobs, err := svc.GetAll(context.TODO(), "p1")
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(2))
			for _, job := range jobs {
				Expect(job.Tags).To(BeEmpty())
				Expect(job.DependentPipelineIDs).To(BeEmpty())
			}
		})

		It("returns an empty list for an empty project", func() {
			jobs, err := svc.GetAll(context.TODO(), "nothing")
			Expect(err).To(BeNil())
			Expect(jobs).To(BeEmpty())
		})
	})

	Context("get by ids", func() {
		It("returns the existing jobs in the requested order", func() {
			a, err := svc.Create(context.TODO(), "p1", newJob("a"))
			Expect(err).To(BeNil())
			b, err := svc.Create(context.TODO(), "p1", newJob("b"))
			Expect(err).To(BeNil())

			jobs, err := svc.GetByIDs(context.TODO(), "p1", []string{b, "missing", a, b})
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(2))
			Expect(jobs[0].ID).To(Equal(b))
			Expect(jobs[1].ID).To(Equal(a))
		})

		It("skips malformed records", func() {
			a, err := svc.Create(context.TODO(), "p1", newJob("a"))
			Expect(err).To(BeNil())
			tx := gormdb.Exec(insertEntryStm, service.JobPartition("p1"), service.JobKey("p1", "broken"), "{not json")
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(insertEntryStm, service.JobPartition("p1"), service.JobKey("p1", "array"), "[1,2]")
			Expect(tx.Error).To(BeNil())

			jobs, err := svc.GetByIDs(context.TODO(), "p1", []string{"broken", a, "array"})
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].ID).To(Equal(a))
		})
	})

	Context("numbers and params", func() {
		It("keeps integers beyond float64 precision", func() {
			var job model.Job
			Expect(json.Unmarshal([]byte(`{"name":"big","definition":{"graph":[{"id":"1","value":{"seed":9007199254740993}}]},"params":{"limit":9007199254740995}}`), &job)).To(Succeed())

			id, err := svc.Create(context.TODO(), "p1", job)
			Expect(err).To(BeNil())

			stored, err := svc.Get(context.TODO(), "p1", id)
			Expect(err).To(BeNil())
			data, err := json.Marshal(stored)
			Expect(err).To(BeNil())
			Expect(string(data)).To(ContainSubstring(`"seed":9007199254740993`))
			Expect(string(data)).To(ContainSubstring(`"limit":9007199254740995`))

			jobs, err := svc.GetByIDs(context.TODO(), "p1", []string{id})
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].Params).To(HaveKeyWithValue("limit", json.Number("9007199254740995")))
		})

		It("returns empty params as an empty object", func() {
			job := newJob("explicit")
			job.Params = definition.Object{}
			explicit, err := svc.Create(context.TODO(), "p1", job)
			Expect(err).To(BeNil())

			job = newJob("absent")
			job.Params = nil
			absent, err := svc.Create(context.TODO(), "p1", job)
			Expect(err).To(BeNil())

			for _, id := range []string{explicit, absent} {
				stored, err := svc.Get(context.TODO(), "p1", id)
				Expect(err).To(BeNil())
				Expect(stored.Params).NotTo(BeNil())
				Expect(stored.Params).To(BeEmpty())

				data, err := json.Marshal(stored)
				Expect(err).To(BeNil())
				Expect(string(data)).To(ContainSubstring(`"params":{}`))
			}
		})
	})

	Context("update", func() {
		It("merges the mutable fields", func() {
			id, err := svc.Create(context.TODO(), "p1", newJob("etl"))
			Expect(err).To(BeNil())

			update := newJob("etl2")
			update.Definition = definition.Document{"graph": []any{}}
			update.RunID = 42
			Expect(svc.Update(context.TODO(), "p1", id, update)).To(BeNil())

			job, err := svc.Get(context.TODO(), "p1", id)
			Expect(err).To(BeNil())
			Expect(job.Name).To(Equal("etl2"))
			Expect(job.RunID).To(Equal(int64(42)))
			Expect(job.Runnable).To(BeFalse())
			Expect(job.Status).To(Equal(model.StatusDraft))
		})

		It("keeps its own name", func() {
			id, err := svc.Create(context.TODO(), "p1", newJob("etl"))
			Expect(err).To(BeNil())
			Expect(svc.Update(context.TODO(), "p1", id, newJob("etl"))).To(BeNil())
		})

		It("refuses the name of another job", func() {
			_, err := svc.Create(context.TODO(), "p1", newJob("a"))
			Expect(err).To(BeNil())
			id, err := svc.Create(context.TODO(), "p1", newJob("b"))
			Expect(err).To(BeNil())

			err = svc.Update(context.TODO(), "p1", id, newJob("a"))
			_, ok := err.(*service.ErrDuplicateName)
			Expect(ok).To(BeTrue())

			job, err := svc.Get(context.TODO(), "p1", id)
			Expect(err).To(BeNil())
			Expect(job.Name).To(Equal("b"))
		})

		It("frees the old name after a rename", func() {
			id, err := svc.Create(context.TODO(), "p1", newJob("a"))
			Expect(err).To(BeNil())
			Expect(svc.Update(context.TODO(), "p1", id, newJob("b"))).To(BeNil())

			_, err = svc.Create(context.TODO(), "p1", newJob("a"))
			Expect(err).To(BeNil())
		})

		It("fails when the job does not exist", func() {
			err := svc.Update(context.TODO(), "p1", "missing", newJob("a"))
			_, ok := err.(*service.ErrResourceNotFound)
			Expect(ok).To(BeTrue())
		})

		It("updates the status", func() {
			id, err := svc.Create(context.TODO(), "p1", newJob("etl"))
			Expect(err).To(BeNil())

			Expect(svc.UpdateStatus(context.TODO(), "p1", id, model.Status("Running"), "2024-01-01T00:00:00Z", "")).To(BeNil())

			job, err := svc.Get(context.TODO(), "p1", id)
			Expect(err).To(BeNil())
			Expect(job.Status).To(Equal(model.Status("Running")))
			Expect(job.StartedAt).To(Equal("2024-01-01T00:00:00Z"))
		})
	})

	Context("delete", func() {
		It("removes the job and frees its name", func() {
			id, err := svc.Create(context.TODO(), "p1", newJob("etl"))
			Expect(err).To(BeNil())

			Expect(svc.Delete(context.TODO(), "p1", id)).To(BeNil())

			_, err = svc.Get(context.TODO(), "p1", id)
			_, ok := err.(*service.ErrResourceNotFound)
			Expect(ok).To(BeTrue())

			_, err = svc.Create(context.TODO(), "p1", newJob("etl"))
			Expect(err).To(BeNil())
		})

		It("ignores a missing job", func() {
			Expect(svc.Delete(context.TODO(), "p1", "missing")).To(BeNil())
		})

		It("removes every job of the project", func() {
			_, err := svc.Create(context.TODO(), "p1", newJob("a"))
			Expect(err).To(BeNil())
			_, err = svc.Create(context.TODO(), "p1", newJob("b"))
			Expect(err).To(BeNil())
			_, err = svc.Create(context.TODO(), "p2", newJob("a"))
			Expect(err).To(BeNil())

			Expect(svc.DeleteAll(context.TODO(), "p1")).To(BeNil())

			jobs, err := svc.GetAll(context.TODO(), "p1")
			Expect(err).To(BeNil())
			Expect(jobs).To(BeEmpty())

			jobs, err = svc.GetAll(context.TODO(), "p2")
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
		})
	})

	Context("copy", func() {
		It("names copies after the first free suffix", func() {
			id, err := svc.Create(context.TODO(), "p1", newJob("etl"))
			Expect(err).To(BeNil())

			first, err := svc.Copy(context.TODO(), "p1", id)
			Expect(err).To(BeNil())
			Expect(first).NotTo(Equal(id))
			second, err := svc.Copy(context.TODO(), "p1", id)
			Expect(err).To(BeNil())
			third, err := svc.Copy(context.TODO(), "p1", id)
			Expect(err).To(BeNil())

			names := []string{}
			for _, copyID := range []string{first, second, third} {
				job, err := svc.Get(context.TODO(), "p1", copyID)
				Expect(err).To(BeNil())
				names = append(names, job.Name)
			}
			Expect(names).To(Equal([]string{"etl-Copy", "etl-Copy1", "etl-Copy2"}))
		})

		It("fails when the job does not exist", func() {
			_, err := svc.Copy(context.TODO(), "p1", "missing")
			_, ok := err.(*service.ErrResourceNotFound)
			Expect(ok).To(BeTrue())
		})
	})

	Context("find by name", func() {
		It("finds the job", func() {
			id, err := svc.Create(context.TODO(), "p1", newJob("etl"))
			Expect(err).To(BeNil())

			job, err := svc.FindByName(context.TODO(), "p1", "etl")
			Expect(err).To(BeNil())
			Expect(job.ID).To(Equal(id))
		})

		It("fails for an unknown name", func() {
			_, err := svc.FindByName(context.TODO(), "p1", "nope")
			_, ok := err.(*service.ErrResourceNotFound)
			Expect(ok).To(BeTrue())
		})
	})

	Context("end to end", func() {
		It("creates, rejects a duplicate, copies and lists", func() {
			job := model.Job{Name: "etl", Definition: definition.Document{"graph": []any{map[string]any{"id": float64(1)}}}}
			j1, err := svc.Create(context.TODO(), "p1", job)
			Expect(err).To(BeNil())

			stored, err := svc.Get(context.TODO(), "p1", j1)
			Expect(err).To(BeNil())
			Expect(stored.Runnable).To(BeTrue())

			_, err = svc.Create(context.TODO(), "p1", job)
			_, ok := err.(*service.ErrDuplicateName)
			Expect(ok).To(BeTrue())

			j2, err := svc.Copy(context.TODO(), "p1", j1)
			Expect(err).To(BeNil())
			Expect(j2).NotTo(Equal(j1))

			jobs, err := svc.GetAll(context.TODO(), "p1")
			Expect(err).To(BeNil())
			names := map[string]string{}
			for _, j := range jobs {
				names[j.ID] = j.Name
			}
			Expect(names).To(Equal(map[string]string{j1: "etl", j2: "etl-Copy"}))
		})
	})
})
