package services

import "github.com/SAP-F-2025/survey-service/internal/models"

// reportCalculator turns snapshots and submissions into report value objects.
// It performs no I/O; now only stamps GeneratedAt.
type reportCalculator struct {
	now Clock
}

func newReportCalculator(now Clock) *reportCalculator {
	if now == nil {
		now = SystemClock
	}
	return &reportCalculator{now: now}
}

func (c *reportCalculator) computeFormReport(formID uint, snapshots *models.SnapshotSet, submissions []*models.Submission, params models.ReportParams) *models.FormReport {
	total := len(submissions)
	submitted := make([]*models.Submission, 0, total)
	for _, sub := range submissions {
		if sub.IsSubmitted() {
			submitted = append(submitted, sub)
		}
	}

	base := submitted
	if params.IncludeDrafts {
		base = submissions
	}

	questions := make([]models.QuestionReport, 0, snapshots.Len())
	for _, q := range snapshots.All() {
		questions = append(questions, questionReport(q, base))
	}

	return &models.FormReport{
		FormID:           formID,
		TotalSubmissions: total,
		SubmittedCount:   len(submitted),
		DraftCount:       total - len(submitted),
		CompletionRate:   completionRate(len(submitted), total),
		Questions:        questions,
		GeneratedAt:      c.now(),
	}
}

func (c *reportCalculator) aggregateCampaign(campaignID uint, forms []models.FormReport) *models.CampaignReport {
	report := &models.CampaignReport{
		CampaignID:  campaignID,
		FormsCount:  len(forms),
		Forms:       forms,
		GeneratedAt: c.now(),
	}
	if report.Forms == nil {
		report.Forms = []models.FormReport{}
	}

	for _, form := range forms {
		report.TotalSubmissions += form.TotalSubmissions
		report.SubmittedCount += form.SubmittedCount
		report.DraftCount += form.DraftCount
	}
	report.CompletionRate = completionRate(report.SubmittedCount, report.TotalSubmissions)

	return report
}

func questionReport(q *models.QuestionSnapshot, base []*models.Submission) models.QuestionReport {
	stats := models.QuestionStats{
		QuestionID: q.QuestionID(),
		Kind:       q.Kind(),
		Required:   q.Required(),
	}

	switch q.Kind() {
	case models.KindChoice:
		return choiceReport(q, stats, base)
	case models.KindTrueFalse:
		return trueFalseReport(stats, base)
	case models.KindText:
		return textReport(q, stats, base)
	case models.KindMatching:
		return matchingReport(q, stats, base)
	default:
		// Builder rejects unknown kinds, so this only covers zero values
		stats.OmittedCount = len(base)
		return models.TextQuestionReport{QuestionStats: stats}
	}
}

func choiceReport(q *models.QuestionSnapshot, stats models.QuestionStats, base []*models.Submission) models.ChoiceQuestionReport {
	optionIDs := q.OptionIDs()
	counts := make(map[uint]int, len(optionIDs))

	for _, sub := range base {
		answer, ok := sub.FindAnswer(stats.QuestionID)
		if !ok {
			continue
		}
		choice, ok := answer.(*models.ChoiceAnswer)
		if !ok {
			continue
		}
		stats.AnsweredCount++
		for _, id := range choice.SelectedOptionIDs() {
			if q.HasOption(id) {
				counts[id]++
			}
		}
	}
	stats.OmittedCount = len(base) - stats.AnsweredCount

	options := make([]models.ChoiceOptionStat, 0, len(optionIDs))
	for _, id := range optionIDs {
		options = append(options, models.ChoiceOptionStat{OptionID: id, Count: counts[id]})
	}

	return models.ChoiceQuestionReport{
		QuestionStats: stats,
		SelectionMode: q.SelectionMode(),
		MinSelections: q.MinSelections(),
		MaxSelections: q.MaxSelections(),
		Options:       options,
	}
}

func trueFalseReport(stats models.QuestionStats, base []*models.Submission) models.TrueFalseQuestionReport {
	report := models.TrueFalseQuestionReport{}
	for _, sub := range base {
		answer, ok := sub.FindAnswer(stats.QuestionID)
		if !ok {
			continue
		}
		tf, ok := answer.(*models.TrueFalseAnswer)
		if !ok {
			continue
		}
		stats.AnsweredCount++
		if tf.Value() {
			report.TrueCount++
		} else {
			report.FalseCount++
		}
	}
	stats.OmittedCount = len(base) - stats.AnsweredCount
	report.QuestionStats = stats
	return report
}

func textReport(q *models.QuestionSnapshot, stats models.QuestionStats, base []*models.Submission) models.TextQuestionReport {
	for _, sub := range base {
		answer, ok := sub.FindAnswer(stats.QuestionID)
		if !ok {
			continue
		}
		if text, ok := answer.(*models.TextAnswer); ok && !text.IsBlank() {
			stats.AnsweredCount++
		}
	}
	stats.OmittedCount = len(base) - stats.AnsweredCount

	return models.TextQuestionReport{
		QuestionStats: stats,
		TextMode:      q.TextMode(),
		MinLength:     q.MinLength(),
		MaxLength:     q.MaxLength(),
	}
}

func matchingReport(q *models.QuestionSnapshot, stats models.QuestionStats, base []*models.Submission) models.MatchingQuestionReport {
	frequencies := make([]models.MatchingPairStat, 0)
	index := make(map[models.MatchingPair]int)

	for _, sub := range base {
		answer, ok := sub.FindAnswer(stats.QuestionID)
		if !ok {
			continue
		}
		matching, ok := answer.(*models.MatchingAnswer)
		if !ok {
			continue
		}
		pairs := matching.Pairs()
		if len(pairs) > 0 {
			stats.AnsweredCount++
		}
		for _, pair := range pairs {
			i, seen := index[pair]
			if !seen {
				i = len(frequencies)
				index[pair] = i
				frequencies = append(frequencies, models.MatchingPairStat{LeftID: pair.LeftID, RightID: pair.RightID})
			}
			frequencies[i].Count++
		}
	}
	stats.OmittedCount = len(base) - stats.AnsweredCount

	return models.MatchingQuestionReport{
		QuestionStats:   stats,
		LeftIDs:         q.LeftIDs(),
		RightIDs:        q.RightIDs(),
		PairFrequencies: frequencies,
	}
}

func completionRate(submitted, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(submitted) / float64(total)
}

