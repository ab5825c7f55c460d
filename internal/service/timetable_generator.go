package service

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/noah-isme/school-roster-api/internal/dto"
	"github.com/noah-isme/school-roster-api/internal/models"
)

// Sampling weights for pool entries.
const (
	coreSubjectWeight     = 3
	electiveSubjectWeight = 1
)

const (
	minFreePeriods = 1
	maxFreePeriods = 2
)

var dayOrder = map[models.DayOfWeek]int{
	models.Monday: 0, models.Tuesday: 1, models.Wednesday: 2, models.Thursday: 3,
	models.Friday: 4, models.Saturday: 5, models.Sunday: 6,
}

// DefaultDayLayout is the school day used when a request brings no layout.
func DefaultDayLayout() []dto.DaySlot {
	return []dto.DaySlot{
		{StartTime: "07:30", EndTime: "07:50", Type: models.PeriodAssembly},
		{StartTime: "07:50", EndTime: "08:30", Type: models.PeriodLesson},
		{StartTime: "08:30", EndTime: "09:10", Type: models.PeriodLesson},
		{StartTime: "09:10", EndTime: "09:50", Type: models.PeriodLesson},
		{StartTime: "09:50", EndTime: "10:10", Type: models.PeriodBreak},
		{StartTime: "10:10", EndTime: "10:50", Type: models.PeriodLesson},
		{StartTime: "10:50", EndTime: "11:30", Type: models.PeriodLesson},
		{StartTime: "11:30", EndTime: "12:10", Type: models.PeriodLesson},
		{StartTime: "12:10", EndTime: "12:50", Type: models.PeriodLunch},
		{StartTime: "12:50", EndTime: "13:30", Type: models.PeriodLesson},
		{StartTime: "13:30", EndTime: "14:10", Type: models.PeriodLesson},
	}
}

// GenerateOptions tunes one generator run.
type GenerateOptions struct {
	// FreePeriods per day, 1 or 2. Zero falls back to the generator default, then to random.
	FreePeriods int
	Rand        *rand.Rand
}

// GenerateResult is the full grid after generation.
type GenerateResult struct {
	Periods   []models.TimetablePeriod
	Generated int
	FreeSlots int
	Warnings  []string
}

// TimetableGenerator fills empty lesson slots of a weekly grid from a subject pool.
type TimetableGenerator struct {
	defaultFreePeriods int
}

// NewTimetableGenerator builds a generator. defaultFreePeriods outside 1..2 means random per day.
func NewTimetableGenerator(defaultFreePeriods int) *TimetableGenerator {
	if defaultFreePeriods < minFreePeriods || defaultFreePeriods > maxFreePeriods {
		defaultFreePeriods = 0
	}
	return &TimetableGenerator{defaultFreePeriods: defaultFreePeriods}
}

// ValidateLayout checks a day layout: one ASSEMBLY, BREAK and LUNCH each, at least one LESSON,
// start before end and no two slots overlapping.
func ValidateLayout(layout []dto.DaySlot) error {
	seenStart := make(map[string]struct{}, len(layout))
	specials := map[models.PeriodType]int{}
	lessons := 0
	for _, slot := range layout {
		if !slot.Type.Valid() {
			return fmt.Errorf("unknown period type %q", slot.Type)
		}
		if err := validateRange(slot.StartTime, slot.EndTime); err != nil {
			return err
		}
		if _, dup := seenStart[slot.StartTime]; dup {
			return fmt.Errorf("duplicate slot start %s", slot.StartTime)
		}
		seenStart[slot.StartTime] = struct{}{}
		if slot.Type.IsSpecial() {
			specials[slot.Type]++
		} else {
			lessons++
		}
	}
	asPeriods := make([]models.TimetablePeriod, len(layout))
	for i, slot := range layout {
		asPeriods[i] = models.TimetablePeriod{DayOfWeek: models.Monday, StartTime: slot.StartTime, EndTime: slot.EndTime, Type: slot.Type}
	}
	if a, b, found := firstOverlap(asPeriods); found {
		return fmt.Errorf("slots %s-%s and %s-%s overlap", a.StartTime, a.EndTime, b.StartTime, b.EndTime)
	}
	for _, kind := range []models.PeriodType{models.PeriodAssembly, models.PeriodBreak, models.PeriodLunch} {
		if specials[kind] != 1 {
			return fmt.Errorf("layout must contain exactly one %s slot", kind)
		}
	}
	if lessons == 0 {
		return fmt.Errorf("layout must contain at least one LESSON slot")
	}
	return nil
}

// Generate returns existing plus generated periods. Periods that already carry a subject or
// course, specials, and weekend rows are returned unchanged.
func (g *TimetableGenerator) Generate(existing []models.TimetablePeriod, pool []dto.PoolSubject, schoolType models.SchoolType, layout []dto.DaySlot, opts GenerateOptions) (*GenerateResult, error) {
	if len(pool) == 0 {
		return nil, badRequest("Subject pool must not be empty")
	}
	if len(layout) == 0 {
		layout = DefaultDayLayout()
	}
	if err := ValidateLayout(layout); err != nil {
		return nil, badRequest(fmt.Sprintf("Invalid day layout: %s", err.Error()))
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	freeTarget := opts.FreePeriods
	if freeTarget < minFreePeriods || freeTarget > maxFreePeriods {
		freeTarget = g.defaultFreePeriods
	}

	slots := make([]dto.DaySlot, len(layout))
	copy(slots, layout)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].StartTime < slots[j].StartTime })

	byDay := make(map[models.DayOfWeek][]models.TimetablePeriod)
	var weekend []models.TimetablePeriod
	for _, p := range existing {
		if p.DayOfWeek.IsWeekday() {
			byDay[p.DayOfWeek] = append(byDay[p.DayOfWeek], p)
		} else {
			weekend = append(weekend, p)
		}
	}

	result := &GenerateResult{}
	for _, day := range models.Weekdays {
		periods, warnings := insertSpecials(day, byDay[day], slots)
		result.Warnings = append(result.Warnings, warnings...)

		candidates := collectCandidates(day, periods, slots)
		free := freeTarget
		if free == 0 {
			free = minFreePeriods + rng.Intn(maxFreePeriods-minFreePeriods+1)
		}
		if free > len(candidates) {
			free = len(candidates)
		}
		reserved := reserveFree(candidates, free, rng)
		result.FreeSlots += free

		for i, c := range candidates {
			if reserved[i] {
				if c.index < 0 {
					periods = append(periods, emptyLesson(day, c.slot))
				}
				continue
			}
			pick := pickWeighted(pool, rng)
			var period *models.TimetablePeriod
			if c.index >= 0 {
				period = &periods[c.index]
			} else {
				periods = append(periods, emptyLesson(day, c.slot))
				period = &periods[len(periods)-1]
			}
			fillLesson(period, pick, schoolType)
			result.Generated++
		}
		result.Periods = append(result.Periods, periods...)
	}
	result.Periods = append(result.Periods, weekend...)
	SortPeriods(result.Periods)
	return result, nil
}

type candidate struct {
	slot  dto.DaySlot
	index int // index into the day's periods, -1 for a slot with no period yet
}

func insertSpecials(day models.DayOfWeek, existing []models.TimetablePeriod, slots []dto.DaySlot) ([]models.TimetablePeriod, []string) {
	periods := make([]models.TimetablePeriod, len(existing))
	copy(periods, existing)

	var warnings []string
	for _, slot := range slots {
		if !slot.Type.IsSpecial() || dayHasType(periods, slot.Type) {
			continue
		}
		hits := overlapping(periods, slot.StartTime, slot.EndTime)
		if len(hits) == 0 {
			periods = append(periods, models.TimetablePeriod{
				DayOfWeek: day,
				StartTime: slot.StartTime,
				EndTime:   slot.EndTime,
				Type:      slot.Type,
			})
			continue
		}
		occupied := false
		for _, i := range hits {
			if !periods[i].IsEmptyLesson() {
				occupied = true
				break
			}
		}
		if occupied {
			warnings = append(warnings, fmt.Sprintf("%s %s is occupied, %s not inserted", day, slot.StartTime, slot.Type))
			continue
		}
		// Empty lessons under the slot give way: the first becomes the special, the rest are dropped.
		first := hits[0]
		periods[first].Type = slot.Type
		periods[first].StartTime = slot.StartTime
		periods[first].EndTime = slot.EndTime
		periods[first].TeacherID = nil
		periods = dropIndexes(periods, hits[1:])
	}
	return periods, warnings
}

func collectCandidates(day models.DayOfWeek, periods []models.TimetablePeriod, slots []dto.DaySlot) []candidate {
	var out []candidate
	for i := range periods {
		if periods[i].IsEmptyLesson() {
			out = append(out, candidate{slot: dto.DaySlot{StartTime: periods[i].StartTime, EndTime: periods[i].EndTime, Type: models.PeriodLesson}, index: i})
		}
	}
	for _, slot := range slots {
		if slot.Type != models.PeriodLesson || len(overlapping(periods, slot.StartTime, slot.EndTime)) > 0 {
			continue
		}
		out = append(out, candidate{slot: slot, index: -1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].slot.StartTime < out[j].slot.StartTime })
	return out
}

// reserveFree marks n candidates as free, preferring periods that already exist empty.
func reserveFree(candidates []candidate, n int, rng *rand.Rand) map[int]bool {
	reserved := make(map[int]bool, n)
	var existing, fresh []int
	for i, c := range candidates {
		if c.index >= 0 {
			existing = append(existing, i)
		} else {
			fresh = append(fresh, i)
		}
	}
	for _, group := range [][]int{existing, fresh} {
		for _, j := range rng.Perm(len(group)) {
			if len(reserved) == n {
				return reserved
			}
			reserved[group[j]] = true
		}
	}
	return reserved
}

func pickWeighted(pool []dto.PoolSubject, rng *rand.Rand) dto.PoolSubject {
	total := 0
	for _, entry := range pool {
		total += poolWeight(entry)
	}
	r := rng.Intn(total)
	for _, entry := range pool {
		r -= poolWeight(entry)
		if r < 0 {
			return entry
		}
	}
	return pool[len(pool)-1]
}

func poolWeight(entry dto.PoolSubject) int {
	if entry.Core {
		return coreSubjectWeight
	}
	return electiveSubjectWeight
}

func fillLesson(period *models.TimetablePeriod, pick dto.PoolSubject, schoolType models.SchoolType) {
	id := pick.ID
	period.Type = models.PeriodLesson
	if schoolType.UsesCourses() {
		period.CourseID = &id
		period.SubjectID = nil
	} else {
		period.SubjectID = &id
		period.CourseID = nil
	}
	if pick.TeacherID != nil {
		teacherID := *pick.TeacherID
		period.TeacherID = &teacherID
	}
}

func emptyLesson(day models.DayOfWeek, slot dto.DaySlot) models.TimetablePeriod {
	return models.TimetablePeriod{DayOfWeek: day, StartTime: slot.StartTime, EndTime: slot.EndTime, Type: models.PeriodLesson}
}

func dayHasType(periods []models.TimetablePeriod, kind models.PeriodType) bool {
	for _, p := range periods {
		if p.Type == kind {
			return true
		}
	}
	return false
}

// overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect. Times are zero-padded HH:MM.
func overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}

// overlapping returns the indexes of periods that intersect [start, end).
func overlapping(periods []models.TimetablePeriod, start, end string) []int {
	var out []int
	for i, p := range periods {
		if overlaps(p.StartTime, p.EndTime, start, end) {
			out = append(out, i)
		}
	}
	return out
}

func dropIndexes(periods []models.TimetablePeriod, drop []int) []models.TimetablePeriod {
	if len(drop) == 0 {
		return periods
	}
	skip := make(map[int]bool, len(drop))
	for _, i := range drop {
		skip[i] = true
	}
	kept := periods[:0]
	for i, p := range periods {
		if !skip[i] {
			kept = append(kept, p)
		}
	}
	return kept
}

// firstOverlap returns the first pair of periods on the same day whose time ranges intersect.
func firstOverlap(periods []models.TimetablePeriod) (models.TimetablePeriod, models.TimetablePeriod, bool) {
	sorted := append([]models.TimetablePeriod(nil), periods...)
	SortPeriods(sorted)
	var latest models.TimetablePeriod // latest-ending period of the current day
	for i, p := range sorted {
		if i > 0 && p.DayOfWeek == latest.DayOfWeek && p.StartTime < latest.EndTime {
			return latest, p, true
		}
		if i == 0 || p.DayOfWeek != latest.DayOfWeek || p.EndTime > latest.EndTime {
			latest = p
		}
	}
	return models.TimetablePeriod{}, models.TimetablePeriod{}, false
}

// SortPeriods orders periods Monday first, then by start time.
func SortPeriods(periods []models.TimetablePeriod) {
	sort.SliceStable(periods, func(i, j int) bool {
		di, dj := dayOrder[periods[i].DayOfWeek], dayOrder[periods[j].DayOfWeek]
		if di != dj {
			return di < dj
		}
		return periods[i].StartTime < periods[j].StartTime
	})
}

// parseClock parses HH:MM into minutes after midnight.
func parseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func validateRange(start, end string) error {
	from, err := parseClock(start)
	if err != nil {
		return err
	}
	to, err := parseClock(end)
	if err != nil {
		return err
	}
	if from >= to {
		return fmt.Errorf("start %s must be before end %s", start, end)
	}
	return nil
}
