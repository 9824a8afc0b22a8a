// Benchmark harness: solves synthetic instances of growing size and reports
// timing statistics per instance class.
package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/BraeWebb/allocate/pkg/model"
)

const (
	repetitions = 5
	randomSeed  = 42
)

type instanceClass struct {
	tutors       int
	sessions     int
	availability float64
}

var classes = []instanceClass{
	{tutors: 5, sessions: 10, availability: 0.8},
	{tutors: 10, sessions: 25, availability: 0.7},
	{tutors: 20, sessions: 50, availability: 0.6},
	{tutors: 40, sessions: 100, availability: 0.6},
}

func main() {
	writer := csv.NewWriter(os.Stdout)
	defer writer.Flush()

	if err := writer.Write([]string{"tutors", "sessions", "solved", "mean_ms", "stddev_ms"}); err != nil {
		log.Fatalf("cannot write results: %v", err)
	}

	for _, class := range classes {
		random := rand.New(rand.NewSource(randomSeed))

		durations := make([]float64, 0, repetitions)
		solved := 0
		for rep := 0; rep < repetitions; rep++ {
			input := generate(class, random)
			allocator := model.NewBacktrackingAllocator(model.DefaultConfig())

			started := time.Now()
			_, err := allocator.Build(input)
			durations = append(durations, float64(time.Since(started).Milliseconds()))

			if err == nil {
				solved++
			}
		}

		mean := stat.Mean(durations, nil)
		stddev := stat.StdDev(durations, nil)
		if err := writer.Write([]string{
			strconv.Itoa(class.tutors),
			strconv.Itoa(class.sessions),
			strconv.Itoa(solved),
			fmt.Sprintf("%.2f", mean),
			fmt.Sprintf("%.2f", stddev),
		}); err != nil {
			log.Fatalf("cannot write results: %v", err)
		}
	}
}

// generate builds a random weekday instance; loose bounds keep most
// instances satisfiable so timings measure search rather than exhaustion.
func generate(class instanceClass, random *rand.Rand) model.ModelInput {
	days := []model.Day{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday}

	tutors := make([]model.Tutor, 0, class.tutors)
	for i := 0; i < class.tutors; i++ {
		tutor := model.DefaultTutor()
		tutor.Name = fmt.Sprintf("tutor-%02d", i)
		tutor.LowerHrLimit = 0
		tutor.UpperHrLimit = 2 + random.Intn(10)
		tutor.DailyMax = 1 + random.Intn(6)
		tutor.IsJunior = random.Intn(3) == 0
		tutors = append(tutors, tutor)
	}

	sessions := make([]model.Session, 0, class.sessions)
	for i := 0; i < class.sessions; i++ {
		session := model.DefaultSession()
		session.Id = fmt.Sprintf("S%03d", i)
		session.Day = days[random.Intn(len(days))]
		session.StartTime = 8 + random.Intn(9)
		session.Duration = 1 + random.Intn(2)
		session.UpperTutorCount = 1 + random.Intn(2)
		sessions = append(sessions, session)
	}

	availability := model.NewAvailability()
	for _, tutor := range tutors {
		for _, session := range sessions {
			availability.Set(tutor.Name, session.Id, random.Float64() < class.availability)
		}
	}

	input, err := model.NewModelInput(tutors, sessions, availability)
	if err != nil {
		log.Fatalf("cannot build instance: %v", err)
	}
	return input
}
