package feedback

import "math"

// AddRating folds one new rating into a stall's running aggregate.
// The stored average is kept at one decimal, so each step rounds.
func AddRating(average float64, count int64, rating int) (float64, int64) {
	newCount := count + 1
	newAverage := (average*float64(count) + float64(rating)) / float64(newCount)
	return round1(newAverage), newCount
}

// RemoveRating recomputes the aggregate without one previously counted
// rating. Removing the last review resets the aggregate to zero/zero.
func RemoveRating(average float64, count int64, rating int) (float64, int64) {
	if count <= 1 {
		return 0, 0
	}
	newCount := count - 1
	newAverage := (average*float64(count) - float64(rating)) / float64(newCount)
	return round1(newAverage), newCount
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
