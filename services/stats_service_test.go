package services

import "testing"

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		students  []StudentExperience
		expCount  int
		expAvg    float64
		expMedian float64
		expMin    int
		expMax    int
	}{
		{
			name:     "empty input",
			students: nil,
		},
		{
			name: "single student",
			students: []StudentExperience{
				{StudentID: 1, Experience: 50},
			},
			expCount:  1,
			expAvg:    50,
			expMedian: 50,
			expMin:    50,
			expMax:    50,
		},
		{
			name: "odd count median is middle value",
			students: []StudentExperience{
				{StudentID: 1, Experience: 10},
				{StudentID: 2, Experience: 200},
				{StudentID: 3, Experience: 30},
			},
			expCount:  3,
			expAvg:    80,
			expMedian: 30,
			expMin:    10,
			expMax:    200,
		},
		{
			name: "even count median averages the middle pair",
			students: []StudentExperience{
				{StudentID: 1, Experience: 10},
				{StudentID: 2, Experience: 20},
				{StudentID: 3, Experience: 30},
				{StudentID: 4, Experience: 100},
			},
			expCount:  4,
			expAvg:    40,
			expMedian: 25,
			expMin:    10,
			expMax:    100,
		},
		{
			name: "negative balances",
			students: []StudentExperience{
				{StudentID: 1, Experience: -20},
				{StudentID: 2, Experience: 20},
			},
			expCount:  2,
			expAvg:    0,
			expMedian: 0,
			expMin:    -20,
			expMax:    20,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Summarize(tc.students)
			if got.Count != tc.expCount {
				t.Fatalf("count: expected %d, got %d", tc.expCount, got.Count)
			}
			if got.Average != tc.expAvg {
				t.Fatalf("average: expected %v, got %v", tc.expAvg, got.Average)
			}
			if got.Median != tc.expMedian {
				t.Fatalf("median: expected %v, got %v", tc.expMedian, got.Median)
			}
			if got.Min != tc.expMin || got.Max != tc.expMax {
				t.Fatalf("min/max: expected %d/%d, got %d/%d", tc.expMin, tc.expMax, got.Min, got.Max)
			}
		})
	}
}

func TestDistribute(t *testing.T) {
	students := []StudentExperience{
		{StudentID: 1, Experience: -30},
		{StudentID: 2, Experience: 0},
		{StudentID: 3, Experience: 99},
		{StudentID: 4, Experience: 100},
		{StudentID: 5, Experience: 250},
	}

	buckets := Distribute(students, 100)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	if buckets[0].From != 0 || buckets[0].To != 100 {
		t.Fatalf("first bucket range: got [%d,%d)", buckets[0].From, buckets[0].To)
	}
	// Negative and zero balances both land in the first bucket.
	if buckets[0].Count != 3 {
		t.Fatalf("first bucket count: expected 3, got %d", buckets[0].Count)
	}
	if buckets[1].Count != 1 {
		t.Fatalf("second bucket count: expected 1, got %d", buckets[1].Count)
	}
	if buckets[2].Count != 1 {
		t.Fatalf("third bucket count: expected 1, got %d", buckets[2].Count)
	}
}

func TestDistributeCapsBucketCount(t *testing.T) {
	students := []StudentExperience{
		{StudentID: 1, Experience: 1_000_000},
		{StudentID: 2, Experience: 5},
	}

	buckets := Distribute(students, 1)
	if len(buckets) > maxDistributionBuckets {
		t.Fatalf("bucket count %d exceeds cap %d", len(buckets), maxDistributionBuckets)
	}

	// Widened buckets still account for every student.
	total := 0
	for _, b := range buckets {
		if b.To <= b.From {
			t.Fatalf("bucket range must stay positive: %+v", b)
		}
		total += b.Count
	}
	if total != len(students) {
		t.Fatalf("expected %d students across buckets, got %d", len(students), total)
	}
}

func TestDistributeEdgeCases(t *testing.T) {
	if got := Distribute(nil, 100); len(got) != 0 {
		t.Fatalf("expected no buckets for empty input, got %d", len(got))
	}
	if got := Distribute([]StudentExperience{{StudentID: 1, Experience: 10}}, 0); len(got) != 0 {
		t.Fatalf("expected no buckets for zero bucket size, got %d", len(got))
	}
}

func TestGroupByTutor(t *testing.T) {
	students := []StudentExperience{
		{StudentID: 1, Experience: 100, TutorID: 2},
		{StudentID: 2, Experience: 200, TutorID: 2},
		{StudentID: 3, Experience: 30, TutorID: 3},
		{StudentID: 4, Experience: 0, TutorID: 0},
	}

	groups := GroupByTutor(students)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	// Ordered by tutor id; unassigned students group under tutor 0.
	if groups[0].TutorID != 0 || groups[0].Count != 1 || groups[0].Average != 0 {
		t.Fatalf("unexpected group for unassigned students: %+v", groups[0])
	}
	if groups[1].TutorID != 2 || groups[1].Count != 2 || groups[1].Average != 150 {
		t.Fatalf("unexpected group for tutor 2: %+v", groups[1])
	}
	if groups[2].TutorID != 3 || groups[2].Count != 1 || groups[2].Average != 30 {
		t.Fatalf("unexpected group for tutor 3: %+v", groups[2])
	}
}

func TestRank(t *testing.T) {
	students := []StudentExperience{
		{StudentID: 1, Experience: 50},
		{StudentID: 2, Experience: 120},
		{StudentID: 3, Experience: 50},
		{StudentID: 4, Experience: 80},
	}

	ranked := Rank(students)
	expOrder := []uint{2, 4, 1, 3}
	for i, id := range expOrder {
		if ranked[i].StudentID != id {
			t.Fatalf("position %d: expected student %d, got %d", i, id, ranked[i].StudentID)
		}
	}

	// The input slice is left untouched.
	if students[0].StudentID != 1 {
		t.Fatalf("input slice was reordered")
	}
}
