package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	m "github.com/Sseankzs/openprofile/internal/model"
	"github.com/Sseankzs/openprofile/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// Exported seeded users, profiles, jobs and documents
var (
	TestUserApplicant1 m.User
	TestUserApplicant2 m.User
	TestUserCompany1   m.User
	TestUserCompany2   m.User
	// TestUserNoProfile has the company role but neither profile.
	TestUserNoProfile m.User

	TestApplicant1 m.ApplicantProfile
	TestApplicant2 m.ApplicantProfile
	TestCompany1   m.CompanyProfile
	TestCompany2   m.CompanyProfile

	TestSeedPassword = "SeedPass123!"

	// TestJob1 and TestJob2 belong to TestCompany1, TestJob3 to TestCompany2.
	TestJob1 m.Job
	TestJob2 m.Job
	TestJob3 m.Job

	// Documents previously uploaded by TestUserApplicant1, stored in the database bucket table.
	TestResume1      m.UserDocument
	TestCoverLetter1 m.UserDocument
)

const (
	seedApplicant1 = "applicant1@example.com"
	seedApplicant2 = "applicant2@example.com"
	seedCompany1   = "company1@example.com"
	seedCompany2   = "company2@example.com"
	seedNoProfile  = "newcomer@example.com"
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, error) {
	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		DBName:    dbName,
		useConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts applicant and company accounts with profiles, three jobs and two
// stored documents. It only loads the exported variables when users already exist.
func seedTestData(db *DBinstanceStruct) error {
	var userCount int64
	if err := db.Model(&m.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		return loadTestData(db)
	}

	hashedPwd, err := utilities.HashPassword(TestSeedPassword)
	if err != nil {
		return err
	}

	userSpecs := []struct {
		email string
		role  string
		dst   *m.User
	}{
		{seedApplicant1, m.RoleApplicant, &TestUserApplicant1},
		{seedApplicant2, m.RoleApplicant, &TestUserApplicant2},
		{seedCompany1, m.RoleCompany, &TestUserCompany1},
		{seedCompany2, m.RoleCompany, &TestUserCompany2},
		{seedNoProfile, m.RoleCompany, &TestUserNoProfile},
	}
	for _, s := range userSpecs {
		u := m.User{ID: uuid.New(), Email: s.email, Password: hashedPwd, SelectedRole: s.role}
		if err := db.Create(&u).Error; err != nil {
			return err
		}
		*s.dst = u
	}

	applicants := []m.ApplicantProfile{
		{
			UserID: TestUserApplicant1.ID,
			EditableApplicantInfo: m.EditableApplicantInfo{
				FirstName: "Alice",
				LastName:  "Nguyen",
				Phone:     "0100000001",
				LinkedIn:  "https://linkedin.com/in/alice",
			},
		},
		{
			UserID: TestUserApplicant2.ID,
			EditableApplicantInfo: m.EditableApplicantInfo{
				FirstName: "Bob",
				LastName:  "Somsak",
				Phone:     "0100000002",
			},
		},
	}
	if err := db.Create(&applicants).Error; err != nil {
		return err
	}
	TestApplicant1, TestApplicant2 = applicants[0], applicants[1]

	companies := []m.CompanyProfile{
		{
			UserID: TestUserCompany1.ID,
			EditableCompanyInfo: m.EditableCompanyInfo{
				CompanyName: "TechNova",
				Email:       "hr@technova.example",
				Location:    "Bangkok",
				Description: "Innovative platform solutions",
			},
		},
		{
			UserID: TestUserCompany2.ID,
			EditableCompanyInfo: m.EditableCompanyInfo{
				CompanyName: "DataForge",
				Email:       "jobs@dataforge.example",
				Location:    "Chiang Mai",
				Description: "Data analytics consulting",
			},
		},
	}
	if err := db.Create(&companies).Error; err != nil {
		return err
	}
	TestCompany1, TestCompany2 = companies[0], companies[1]

	now := time.Now()
	jobs := []m.Job{
		{
			CompanyID: TestCompany1.ID,
			PostedBy:  TestUserCompany1.ID,
			EditableJobInfo: m.EditableJobInfo{
				Title:       "Backend Engineer",
				Location:    "Bangkok (Hybrid)",
				Description: "Work on **Go** services and database layers.",
				SalaryRange: ptr("30000 - 50000 THB"),
				SalaryMin:   ptr(30000.0),
				SalaryMax:   ptr(50000.0),
				JobType:     ptr("Full-time"),
			},
			CreatedAt: now.Add(-3 * time.Hour),
		},
		{
			CompanyID: TestCompany1.ID,
			PostedBy:  TestUserCompany1.ID,
			EditableJobInfo: m.EditableJobInfo{
				Title:       "Frontend Developer Intern",
				Location:    "Remote",
				Description: "Assist building a component library.",
				SalaryMin:   ptr(10000.0),
				SalaryMax:   ptr(15000.0),
				JobType:     ptr("Internship"),
			},
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			CompanyID: TestCompany2.ID,
			PostedBy:  TestUserCompany2.ID,
			EditableJobInfo: m.EditableJobInfo{
				Title:       "Data Analyst",
				Location:    "Chiang Mai (On-site)",
				Description: "Support data cleansing and dashboard creation.",
				JobType:     ptr("Contract"),
			},
			CreatedAt: now.Add(-1 * time.Hour),
		},
	}
	if err := db.Create(&jobs).Error; err != nil {
		return err
	}
	TestJob1, TestJob2, TestJob3 = jobs[0], jobs[1], jobs[2]

	resumePath := TestUserApplicant1.ID.String() + "/resumes/seed-resume.pdf"
	coverPath := TestUserApplicant1.ID.String() + "/cover-letters/seed-cover-letter.pdf"
	objects := []m.StoredObject{
		{Bucket: "resumes", ObjectName: resumePath, Content: []byte("%PDF-1.4 seeded resume"), ContentType: "application/pdf"},
		{Bucket: "cover-letters", ObjectName: coverPath, Content: []byte("%PDF-1.4 seeded cover letter"), ContentType: "application/pdf"},
	}
	if err := db.Create(&objects).Error; err != nil {
		return err
	}

	docs := []m.UserDocument{
		{UserID: TestUserApplicant1.ID, FileType: m.DocumentResume, FilePath: resumePath},
		{UserID: TestUserApplicant1.ID, FileType: m.DocumentCoverLetter, FilePath: coverPath},
	}
	if err := db.Create(&docs).Error; err != nil {
		return err
	}
	TestResume1, TestCoverLetter1 = docs[0], docs[1]

	return nil
}

// loadTestData populates exported variables when records already exist.
func loadTestData(db *DBinstanceStruct) error {
	var users []m.User
	if err := db.Where("email IN ?", []string{
		seedApplicant1, seedApplicant2, seedCompany1, seedCompany2, seedNoProfile,
	}).Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		switch u.Email {
		case seedApplicant1:
			TestUserApplicant1 = u
		case seedApplicant2:
			TestUserApplicant2 = u
		case seedCompany1:
			TestUserCompany1 = u
		case seedCompany2:
			TestUserCompany2 = u
		case seedNoProfile:
			TestUserNoProfile = u
		}
	}

	_ = db.First(&TestApplicant1, "user_id = ?", TestUserApplicant1.ID).Error
	_ = db.First(&TestApplicant2, "user_id = ?", TestUserApplicant2.ID).Error
	_ = db.First(&TestCompany1, "user_id = ?", TestUserCompany1.ID).Error
	_ = db.First(&TestCompany2, "user_id = ?", TestUserCompany2.ID).Error

	var jobs []m.Job
	if err := db.Order("created_at ASC").Limit(3).Find(&jobs).Error; err == nil {
		if len(jobs) > 0 {
			TestJob1 = jobs[0]
		}
		if len(jobs) > 1 {
			TestJob2 = jobs[1]
		}
		if len(jobs) > 2 {
			TestJob3 = jobs[2]
		}
	}

	_ = db.Where("user_id = ? AND file_type = ?", TestUserApplicant1.ID, m.DocumentResume).
		Order("uploaded_at ASC").First(&TestResume1).Error
	_ = db.Where("user_id = ? AND file_type = ?", TestUserApplicant1.ID, m.DocumentCoverLetter).
		Order("uploaded_at ASC").First(&TestCoverLetter1).Error

	return nil
}

// ptr helper
func ptr[T any](v T) *T { return &v }
