package repo

import (
	"context"
	"errors"
	"testing"

	"job-portal/internal/core/database/dbtest"
	"job-portal/internal/domain"
)

func mustStudent(t *testing.T, r *UserRepo, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "x", Role: domain.RoleStudent}
	if err := r.CreateStudent(context.Background(), u, &domain.Student{Promotion: "2025", Specialization: "CS"}); err != nil {
		t.Fatalf("create student %s: %v", email, err)
	}
	return u
}

func mustCompany(t *testing.T, r *CompanyRepo, name, email string) *domain.Company {
	t.Helper()
	c := &domain.Company{Name: name, Sector: "IT", Email: email}
	if err := r.Create(context.Background(), c); err != nil {
		t.Fatalf("create company: %v", err)
	}
	return c
}

func mustOffer(t *testing.T, r *OfferRepo, companyID uint, title, contract string) *domain.JobOffer {
	t.Helper()
	o := &domain.JobOffer{Title: title, CompanyID: companyID, ContractType: contract, Description: "Go and SQL"}
	if err := r.Create(context.Background(), o); err != nil {
		t.Fatalf("create offer: %v", err)
	}
	return o
}

func TestUserRepoStudentLifecycle(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(dbtest.Open(t))

	u := mustStudent(t, users, "s1@test.com")
	if u.ID == 0 {
		t.Fatal("id not set")
	}
	dup := &domain.User{Email: "s1@test.com", PasswordHash: "y", Role: domain.RoleStudent}
	if err := users.CreateStudent(ctx, dup, &domain.Student{Promotion: "1", Specialization: "X"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("duplicate email: %v", err)
	}
	if n, _ := users.CountStudents(ctx); n != 1 {
		t.Fatalf("students = %d, a failed registration left a row", n)
	}

	got, err := users.FindByEmail(ctx, "s1@test.com")
	if err != nil || got == nil || got.ID != u.ID {
		t.Fatalf("find by email: %v %v", got, err)
	}
	if missing, err := users.FindByEmail(ctx, "nobody@test.com"); missing != nil || err != nil {
		t.Fatalf("missing user: %v %v", missing, err)
	}
	if ok, _ := users.EmailExists(ctx, "s1@test.com"); !ok {
		t.Fatal("email should exist")
	}

	p, err := users.FindStudent(ctx, u.ID)
	if err != nil || p == nil {
		t.Fatalf("find student: %v %v", p, err)
	}
	if p.Email != "s1@test.com" || p.Promotion != "2025" || p.Specialization != "CS" {
		t.Fatalf("profile = %+v", p)
	}
	if list, _ := users.ListStudents(ctx, 5); len(list) != 1 {
		t.Fatalf("list = %v", list)
	}
}

func TestCompanyRepoEmailScope(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	companies := NewCompanyRepo(db)

	a := mustCompany(t, companies, "Acme", "a@b.com")
	b := mustCompany(t, companies, "Beta", "beta@b.com")

	if err := companies.Create(ctx, &domain.Company{Name: "Dup", Sector: "IT", Email: "a@b.com"}); !errors.Is(err, domain.ErrCompanyEmailTaken) {
		t.Fatalf("duplicate create: %v", err)
	}
	if ok, _ := companies.EmailExists(ctx, "a@b.com", b.ID); !ok {
		t.Fatal("email of another company must count")
	}
	if ok, _ := companies.EmailExists(ctx, "a@b.com", a.ID); ok {
		t.Fatal("own email must be excluded")
	}

	a.Phone = "0102"
	if err := companies.Update(ctx, a); err != nil {
		t.Fatal(err)
	}
	got, _ := companies.FindByID(ctx, a.ID)
	if got.Phone != "0102" {
		t.Fatalf("phone = %q", got.Phone)
	}

	offers := NewOfferRepo(db)
	mustOffer(t, offers, b.ID, "Dev", "CDI")
	if n, _ := companies.CountOffers(ctx, b.ID); n != 1 {
		t.Fatalf("offers = %d", n)
	}
	if err := companies.Delete(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if gone, _ := companies.FindByID(ctx, a.ID); gone != nil {
		t.Fatal("company not deleted")
	}
}

func TestOfferRepoSearchAndArchive(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	acme := mustCompany(t, NewCompanyRepo(db), "Acme", "hr@acme.com")
	beta := mustCompany(t, NewCompanyRepo(db), "Beta Labs", "hr@beta.com")
	offers := NewOfferRepo(db)

	backend := mustOffer(t, offers, acme.ID, "Backend Intern", "Internship")
	front := mustOffer(t, offers, beta.ID, "Frontend Developer", "CDI")

	res, err := offers.Search(ctx, domain.OfferFilter{Query: "backend"})
	if err != nil || len(res) != 1 || res[0].ID != backend.ID || res[0].CompanyName != "Acme" {
		t.Fatalf("search backend: %+v %v", res, err)
	}
	if res, _ := offers.Search(ctx, domain.OfferFilter{Query: "LABS"}); len(res) != 1 || res[0].ID != front.ID {
		t.Fatalf("search by company name: %+v", res)
	}
	if res, _ := offers.Search(ctx, domain.OfferFilter{Query: "go and"}); len(res) != 2 {
		t.Fatalf("search by description: %+v", res)
	}
	if res, _ := offers.Search(ctx, domain.OfferFilter{CompanyID: acme.ID, ContractType: "CDI"}); len(res) != 0 {
		t.Fatalf("filters must combine: %+v", res)
	}

	ok, err := offers.SetArchived(ctx, backend.ID, true)
	if err != nil || !ok {
		t.Fatalf("archive: %v %v", ok, err)
	}
	if ok, _ := offers.SetArchived(ctx, 999, true); ok {
		t.Fatal("archiving a missing offer reported success")
	}
	if res, _ := offers.Search(ctx, domain.OfferFilter{Query: "backend"}); len(res) != 0 {
		t.Fatal("archived offer still searchable")
	}
	if d, _ := offers.FindActive(ctx, backend.ID); d != nil {
		t.Fatal("archived offer still active")
	}
	st, _ := offers.Stats(ctx)
	if st.Active != 1 || st.Archived != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if arch, _ := offers.Archived(ctx); len(arch) != 1 || arch[0].ID != backend.ID {
		t.Fatalf("archived = %+v", arch)
	}
	refs, _ := offers.CompaniesWithOffers(ctx)
	if len(refs) != 1 || refs[0].Name != "Beta Labs" {
		t.Fatalf("companies with offers = %+v", refs)
	}
	if types, _ := offers.ContractTypes(ctx); len(types) != 1 || types[0] != "CDI" {
		t.Fatalf("contract types = %v", types)
	}

	if ok, _ := offers.SetArchived(ctx, backend.ID, false); !ok {
		t.Fatal("restore failed")
	}
	d, err := offers.FindActive(ctx, backend.ID)
	if err != nil || d == nil || d.CompanyEmail != "hr@acme.com" {
		t.Fatalf("detail = %+v %v", d, err)
	}
}

func TestApplicationRepo(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	student := mustStudent(t, NewUserRepo(db), "s1@test.com")
	acme := mustCompany(t, NewCompanyRepo(db), "Acme", "hr@acme.com")
	offer := mustOffer(t, NewOfferRepo(db), acme.ID, "Backend Intern", "Internship")
	apps := NewApplicationRepo(db)

	a := &domain.JobApplication{StudentID: student.ID, JobOfferID: offer.ID, CoverLetter: "hi", Status: domain.StatusPending}
	if err := apps.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	again := &domain.JobApplication{StudentID: student.ID, JobOfferID: offer.ID, CoverLetter: "again", Status: domain.StatusPending}
	if err := apps.Create(ctx, again); !errors.Is(err, domain.ErrAlreadyApplied) {
		t.Fatalf("unique index not mapped: %v", err)
	}
	if ok, _ := apps.HasApplied(ctx, student.ID, offer.ID); !ok {
		t.Fatal("has applied")
	}
	if ok, _ := apps.HasAccepted(ctx, student.ID); ok {
		t.Fatal("nothing accepted yet")
	}
	if err := apps.UpdateStatus(ctx, a.ID, domain.StatusAccepted); err != nil {
		t.Fatal(err)
	}
	if ok, _ := apps.HasAccepted(ctx, student.ID); !ok {
		t.Fatal("accepted not seen")
	}

	mine, err := apps.ListByStudent(ctx, student.ID)
	if err != nil || len(mine) != 1 || mine[0].JobTitle != "Backend Intern" || mine[0].CompanyEmail != "hr@acme.com" {
		t.Fatalf("list by student = %+v %v", mine, err)
	}
	if mine[0].Status != domain.StatusAccepted {
		t.Fatalf("status = %s", mine[0].Status)
	}
	applicants, err := apps.ListByOffer(ctx, offer.ID)
	if err != nil || len(applicants) != 1 || applicants[0].StudentEmail != "s1@test.com" || applicants[0].Promotion != "2025" {
		t.Fatalf("applicants = %+v %v", applicants, err)
	}
	if missing, err := apps.FindByID(ctx, 404); missing != nil || err != nil {
		t.Fatalf("missing application: %v %v", missing, err)
	}
}
