package domain

import "math"

// Classifications оценки сервиса интервью, каждая в диапазоне [0,1]
type Classifications struct {
	Excited      float64 `json:"Excited"`
	Paused       float64 `json:"Paused"`
	EngagingTone float64 `json:"EngagingTone"`
	Calm         float64 `json:"Calm"`
	NoFillers    float64 `json:"NoFillers"`
}

// Percentages возвращает оценки в целых процентах
func (c Classifications) Percentages() map[string]int {
	pct := func(v float64) int { return int(math.Round(v * 100)) }
	return map[string]int{
		"Excited":      pct(c.Excited),
		"Paused":       pct(c.Paused),
		"EngagingTone": pct(c.EngagingTone),
		"Calm":         pct(c.Calm),
		"NoFillers":    pct(c.NoFillers),
	}
}

// InterviewResult результат анализа интервью
type InterviewResult struct {
	Classifications        Classifications `json:"classifications"`
	GoodPerformance        []string        `json:"good_performance"`
	ImprovementOpportunity []string        `json:"improvement_opportunity"`
}

// PostureStats статистика обработки кадров
type PostureStats struct {
	ProcessedFrames int `json:"processed_frames"`
	TotalFrames     int `json:"total_frames"`
}

// PostureResult результат анализа осанки. Набор ключей AverageAngles и Feedback открытый.
type PostureResult struct {
	Status        string             `json:"status"`
	Message       string             `json:"message,omitempty"`
	Stats         PostureStats       `json:"stats"`
	AverageAngles map[string]float64 `json:"average_angles,omitempty"`
	Feedback      map[string]string  `json:"feedback,omitempty"`
}

// Succeeded сервис осанки может вернуть completed с результатом status=error
func (r PostureResult) Succeeded() bool {
	return r.Status == "success"
}
