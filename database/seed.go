package database

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sahilchouksey/examace-vault/model"
	"github.com/sahilchouksey/examace-vault/services/storage"
)

// PaperPrefix is where uploaded papers live in the bucket:
// papers/<subject code>/<year>_<resource type>.pdf
const PaperPrefix = "papers/"

// ObjectLister lists bucket objects; *storage.SpacesClient implements it
type ObjectLister interface {
	ListFiles(ctx context.Context, prefix string) ([]storage.Object, error)
}

// Seeder handles database seeding operations
type Seeder struct {
	db      *gorm.DB
	objects ObjectLister
	log     zerolog.Logger
}

// NewSeeder creates a new seeder instance. objects may be nil, in which
// case no resources are imported.
func NewSeeder(db *gorm.DB, objects ObjectLister, logger zerolog.Logger) *Seeder {
	return &Seeder{db: db, objects: objects, log: logger.With().Str("component", "seed").Logger()}
}

// SeedAll runs all seed functions in foreign key order
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.log.Info().Msg("starting database seeding")

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"universities", s.SeedUniversities},
		{"degrees", s.SeedDegrees},
		{"semesters", s.SeedSemesters},
		{"subjects", s.SeedSubjects},
		{"resources", s.ImportResources},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			return fmt.Errorf("failed to seed %s: %w", step.name, err)
		}
	}

	s.log.Info().Msg("database seeding completed")
	return nil
}

func (s *Seeder) exists(ctx context.Context, m interface{}) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(m).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SeedUniversities creates sample universities
func (s *Seeder) SeedUniversities(ctx context.Context) error {
	if ok, err := s.exists(ctx, &model.University{}); err != nil || ok {
		if ok {
			s.log.Info().Msg("universities already exist, skipping")
		}
		return err
	}

	universities := []model.University{
		{Name: "Rajiv Gandhi Proudyogiki Vishwavidyalaya", Code: "RGPV", Location: "Bhopal, Madhya Pradesh", IsActive: true},
		{Name: "Dr. A.P.J. Abdul Kalam Technical University", Code: "AKTU", Location: "Lucknow, Uttar Pradesh", IsActive: true},
		{Name: "University of Delhi", Code: "DU", Location: "Delhi", IsActive: true},
	}
	if err := s.db.WithContext(ctx).Create(&universities).Error; err != nil {
		return err
	}

	s.log.Info().Int("count", len(universities)).Msg("created universities")
	return nil
}

// degreeSeed pairs a degree with its length in semesters
type degreeSeed struct {
	university string
	degree     model.Degree
	semesters  int
}

var degreeSeeds = []degreeSeed{
	{"RGPV", model.Degree{Name: "Master of Computer Applications", Code: "MCA", Description: "2-year postgraduate program in computer applications"}, 4},
	{"RGPV", model.Degree{Name: "Bachelor of Technology - Computer Science", Code: "BTECH-CS", Description: "4-year undergraduate engineering program"}, 8},
	{"AKTU", model.Degree{Name: "Master of Computer Applications", Code: "MCA", Description: "2-year postgraduate program in computer applications"}, 4},
	{"AKTU", model.Degree{Name: "Bachelor of Computer Applications", Code: "BCA", Description: "3-year undergraduate program in computer applications"}, 6},
	{"DU", model.Degree{Name: "Bachelor of Science - Computer Science", Code: "BSC-CS", Description: "3-year undergraduate science program"}, 6},
}

// SeedDegrees creates sample degrees for the seeded universities
func (s *Seeder) SeedDegrees(ctx context.Context) error {
	if ok, err := s.exists(ctx, &model.Degree{}); err != nil || ok {
		if ok {
			s.log.Info().Msg("degrees already exist, skipping")
		}
		return err
	}

	var universities []model.University
	if err := s.db.WithContext(ctx).Find(&universities).Error; err != nil {
		return err
	}
	if len(universities) == 0 {
		return fmt.Errorf("no universities found, seed universities first")
	}
	byCode := make(map[string]model.University, len(universities))
	for _, u := range universities {
		byCode[u.Code] = u
	}

	var degrees []model.Degree
	for _, seed := range degreeSeeds {
		u, ok := byCode[seed.university]
		if !ok {
			continue
		}
		d := seed.degree
		d.UniversityID = u.ID
		d.IsActive = true
		degrees = append(degrees, d)
	}
	if len(degrees) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&degrees).Error; err != nil {
		return err
	}

	s.log.Info().Int("count", len(degrees)).Msg("created degrees")
	return nil
}

// SeedSemesters creates the semesters of every degree
func (s *Seeder) SeedSemesters(ctx context.Context) error {
	if ok, err := s.exists(ctx, &model.Semester{}); err != nil || ok {
		if ok {
			s.log.Info().Msg("semesters already exist, skipping")
		}
		return err
	}

	var degrees []model.Degree
	if err := s.db.WithContext(ctx).Preload("University").Find(&degrees).Error; err != nil {
		return err
	}
	if len(degrees) == 0 {
		return fmt.Errorf("no degrees found, seed degrees first")
	}

	var semesters []model.Semester
	for _, d := range degrees {
		for i := 1; i <= semesterCount(d); i++ {
			semesters = append(semesters, model.Semester{
				DegreeID: d.ID,
				Number:   i,
				Name:     fmt.Sprintf("Semester %d", i),
				IsActive: true,
			})
		}
	}
	if err := s.db.WithContext(ctx).Create(&semesters).Error; err != nil {
		return err
	}

	s.log.Info().Int("count", len(semesters)).Msg("created semesters")
	return nil
}

// semesterCount looks the degree up in the seed table; unknown degrees get
// six semesters
func semesterCount(d model.Degree) int {
	for _, seed := range degreeSeeds {
		if seed.degree.Code == d.Code && d.University != nil && d.University.Code == seed.university {
			return seed.semesters
		}
	}
	return 6
}

var mcaSubjects = map[int][]model.Subject{
	1: {
		{Name: "Discrete Structures", Code: "MCA101", Description: "Mathematical foundations for computer science"},
		{Name: "Computer Organization", Code: "MCA102", Description: "Computer architecture and organization"},
		{Name: "Programming in C", Code: "MCA103", Description: "Introduction to C programming language"},
		{Name: "Database Management Systems", Code: "MCA104", Description: "Fundamentals of database systems"},
	},
	2: {
		{Name: "Data Structures", Code: "MCA201", Description: "Linear and non-linear data structures"},
		{Name: "Operating Systems", Code: "MCA202", Description: "OS concepts and implementation"},
		{Name: "Computer Networks", Code: "MCA203", Description: "Network protocols and architectures"},
		{Name: "Software Engineering", Code: "MCA204", Description: "Software development lifecycle and methodologies"},
	},
	3: {
		{Name: "Design and Analysis of Algorithms", Code: "MCA301", Description: "Algorithm design techniques and complexity analysis"},
		{Name: "Artificial Intelligence", Code: "MCA302", Description: "AI concepts and techniques"},
		{Name: "Compiler Design", Code: "MCA303", Description: "Lexing, parsing and code generation"},
		{Name: "Web Technologies", Code: "MCA304", Description: "HTML, CSS, JavaScript and web development"},
	},
	4: {
		{Name: "Machine Learning", Code: "MCA401", Description: "ML algorithms and applications"},
		{Name: "Cloud Computing", Code: "MCA402", Description: "Cloud platforms and services"},
		{Name: "Cyber Security", Code: "MCA403", Description: "Information security fundamentals"},
	},
}

// SeedSubjects creates subjects for every MCA semester
func (s *Seeder) SeedSubjects(ctx context.Context) error {
	if ok, err := s.exists(ctx, &model.Subject{}); err != nil || ok {
		if ok {
			s.log.Info().Msg("subjects already exist, skipping")
		}
		return err
	}

	var semesters []model.Semester
	if err := s.db.WithContext(ctx).
		Joins("JOIN degrees ON degrees.id = semesters.degree_id").
		Where("degrees.code = ?", "MCA").
		Order("semesters.semester_number ASC").
		Find(&semesters).Error; err != nil {
		return err
	}
	if len(semesters) == 0 {
		s.log.Info().Msg("no MCA semesters found, skipping subject seeding")
		return nil
	}

	var all []model.Subject
	for _, sem := range semesters {
		for _, subject := range mcaSubjects[sem.Number] {
			subject.SemesterID = sem.ID
			subject.IsActive = true
			all = append(all, subject)
		}
	}
	if len(all) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&all).Error; err != nil {
		return err
	}

	s.log.Info().Int("count", len(all)).Msg("created subjects")
	return nil
}

// PaperKey is what an object key under PaperPrefix says about a paper
type PaperKey struct {
	SubjectCode  string
	Year         string
	ResourceType model.ResourceType
}

// ParsePaperKey reads papers/<subject code>/<year>_<resource type>.pdf
func ParsePaperKey(key string) (PaperKey, bool) {
	rest, ok := strings.CutPrefix(key, PaperPrefix)
	if !ok {
		return PaperKey{}, false
	}
	code, file, ok := strings.Cut(rest, "/")
	if !ok || code == "" || strings.Contains(file, "/") {
		return PaperKey{}, false
	}
	if !strings.EqualFold(path.Ext(file), ".pdf") {
		return PaperKey{}, false
	}

	year, kind, ok := strings.Cut(strings.TrimSuffix(file, path.Ext(file)), "_")
	if !ok || len(year) != 4 {
		return PaperKey{}, false
	}
	for _, r := range year {
		if r < '0' || r > '9' {
			return PaperKey{}, false
		}
	}
	rt := model.ResourceType(strings.ToLower(kind))
	if !rt.Valid() {
		return PaperKey{}, false
	}
	return PaperKey{SubjectCode: strings.ToUpper(code), Year: year, ResourceType: rt}, true
}

// ImportResources creates a resource row for every paper in the bucket
// that is not yet recorded. Keys that do not follow the layout, or name
// an unknown subject code, are skipped.
func (s *Seeder) ImportResources(ctx context.Context) error {
	if s.objects == nil {
		s.log.Info().Msg("no bucket configured, skipping resource import")
		return nil
	}

	objects, err := s.objects.ListFiles(ctx, PaperPrefix)
	if err != nil {
		return err
	}

	var subjects []model.Subject
	if err := s.db.WithContext(ctx).Preload("Semester.Degree").Find(&subjects).Error; err != nil {
		return err
	}
	byCode := make(map[string]model.Subject, len(subjects))
	for _, sub := range subjects {
		byCode[strings.ToUpper(sub.Code)] = sub
	}

	var known []string
	if err := s.db.WithContext(ctx).Model(&model.Resource{}).Pluck("file_path", &known).Error; err != nil {
		return err
	}
	recorded := make(map[string]bool, len(known))
	for _, p := range known {
		recorded[p] = true
	}

	var rows []model.Resource
	skipped := 0
	for _, obj := range objects {
		if recorded[obj.Key] {
			continue
		}
		pk, ok := ParsePaperKey(obj.Key)
		sub, found := byCode[pk.SubjectCode]
		if !ok || !found {
			skipped++
			s.log.Debug().Str("key", obj.Key).Msg("skipping object")
			continue
		}
		rows = append(rows, paperResource(sub, pk, obj.Key))
	}

	if len(rows) > 0 {
		if err := s.db.WithContext(ctx).CreateInBatches(&rows, 100).Error; err != nil {
			return err
		}
	}
	s.log.Info().Int("created", len(rows)).Int("skipped", skipped).Msg("imported resources")
	return nil
}

func paperResource(sub model.Subject, pk PaperKey, key string) model.Resource {
	r := model.Resource{
		SubjectID:    sub.ID,
		Title:        fmt.Sprintf("%s %s %s", sub.Name, pk.Year, pk.ResourceType.Label()),
		Subject:      sub.Name,
		Year:         pk.Year,
		ResourceType: pk.ResourceType,
		FilePath:     key,
		IsPublished:  true,
		ShowInRecent: true,
	}
	if sub.Semester != nil && sub.Semester.Degree != nil {
		degreeID := sub.Semester.Degree.ID
		r.DegreeID = &degreeID
		r.Course = sub.Semester.Degree.Code
	}
	return r
}
