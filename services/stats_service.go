package services

import (
	"sort"

	"classquest_go/database"
	"classquest_go/models"
)

// StudentExperience is the input row for every statistics function: one
// student with their accumulated experience and owning tutor.
type StudentExperience struct {
	StudentID  uint `json:"student_id"`
	Experience int  `json:"experience"`
	TutorID    uint `json:"tutor_id"`
}

// StatsService answers leaderboard and distribution queries. All aggregation
// is stateless and recomputed per read; only the fetch touches the database.
type StatsService struct{}

func NewStatsService() *StatsService {
	return &StatsService{}
}

// FetchStudentExperience loads every active student with their ledger balance
// as experience, in a single grouped query.
func (st *StatsService) FetchStudentExperience() ([]StudentExperience, error) {
	var rows []StudentExperience
	err := database.DB.Model(&models.User{}).
		Select("users.id AS student_id, COALESCE(SUM(points_transactions.amount), 0) AS experience, COALESCE(users.tutor_id, 0) AS tutor_id").
		Joins("LEFT JOIN points_transactions ON points_transactions.student_id = users.id AND points_transactions.deleted_at IS NULL").
		Where("users.role = ? AND users.status = ?", "student", "active").
		Group("users.id, users.tutor_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Summary holds the headline aggregates for a student list.
type Summary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
	Min     int     `json:"min"`
	Max     int     `json:"max"`
}

// Summarize computes count, average, median, min, and max experience.
func Summarize(students []StudentExperience) Summary {
	if len(students) == 0 {
		return Summary{}
	}

	values := make([]int, len(students))
	total := 0
	for i, s := range students {
		values[i] = s.Experience
		total += s.Experience
	}
	sort.Ints(values)

	median := float64(values[len(values)/2])
	if len(values)%2 == 0 {
		median = float64(values[len(values)/2-1]+values[len(values)/2]) / 2
	}

	return Summary{
		Count:   len(students),
		Average: float64(total) / float64(len(students)),
		Median:  median,
		Min:     values[0],
		Max:     values[len(values)-1],
	}
}

// Bucket is one slot of an experience distribution.
type Bucket struct {
	From  int `json:"from"`
	To    int `json:"to"` // exclusive
	Count int `json:"count"`
}

// maxDistributionBuckets caps the slice Distribute allocates; a tiny bucket
// size against a large top balance widens the buckets instead.
const maxDistributionBuckets = 1000

// Distribute groups students into fixed-size experience buckets starting at
// zero. Negative balances land in the first bucket.
func Distribute(students []StudentExperience, bucketSize int) []Bucket {
	if bucketSize <= 0 || len(students) == 0 {
		return []Bucket{}
	}

	maxExp := 0
	for _, s := range students {
		if s.Experience > maxExp {
			maxExp = s.Experience
		}
	}

	if maxExp/bucketSize+1 > maxDistributionBuckets {
		bucketSize = maxExp/maxDistributionBuckets + 1
	}

	buckets := make([]Bucket, maxExp/bucketSize+1)
	for i := range buckets {
		buckets[i].From = i * bucketSize
		buckets[i].To = (i + 1) * bucketSize
	}
	for _, s := range students {
		idx := 0
		if s.Experience > 0 {
			idx = s.Experience / bucketSize
		}
		buckets[idx].Count++
	}
	return buckets
}

// TutorGroup aggregates a tutor's students.
type TutorGroup struct {
	TutorID uint    `json:"tutor_id"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// GroupByTutor computes per-tutor student count and average experience,
// ordered by tutor id for a stable response.
func GroupByTutor(students []StudentExperience) []TutorGroup {
	totals := map[uint]int{}
	counts := map[uint]int{}
	for _, s := range students {
		totals[s.TutorID] += s.Experience
		counts[s.TutorID]++
	}

	tutorIDs := make([]uint, 0, len(counts))
	for id := range counts {
		tutorIDs = append(tutorIDs, id)
	}
	sort.Slice(tutorIDs, func(i, j int) bool { return tutorIDs[i] < tutorIDs[j] })

	groups := make([]TutorGroup, 0, len(tutorIDs))
	for _, id := range tutorIDs {
		groups = append(groups, TutorGroup{
			TutorID: id,
			Count:   counts[id],
			Average: float64(totals[id]) / float64(counts[id]),
		})
	}
	return groups
}

// Rank orders students by descending experience. Ties keep their original
// fetch order; no further tie-break is applied.
func Rank(students []StudentExperience) []StudentExperience {
	ranked := make([]StudentExperience, len(students))
	copy(ranked, students)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Experience > ranked[j].Experience
	})
	return ranked
}
