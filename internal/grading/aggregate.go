package grading

import "fundamental-grader/internal/domain"

// ScoreGrades averages the grade-points of a sequence of letters, rounded to 2 decimals.
// Letters off the scale count as 0. An empty sequence scores 0.
func ScoreGrades(grades []domain.Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	sum := 0.0
	for _, g := range grades {
		p, _ := Points(g)
		sum += p
	}
	return Round2(sum / float64(len(grades)))
}

// GradeCategory grades every metric of a category for one company and attaches
// the averaged score and its letter.
func (g *Grader) GradeCategory(c domain.Company, category domain.Category) (domain.CategoryScore, []domain.DataQualityIssue) {
	score := domain.CategoryScore{
		Category: category.Name,
		Grades:   make([]domain.MetricGrade, 0, len(category.Metrics)),
	}

	var issues []domain.DataQualityIssue
	letters := make([]domain.Grade, 0, len(category.Metrics))
	for _, metric := range category.Metrics {
		mg, metricIssues := g.Grade(c, metric)
		score.Grades = append(score.Grades, mg)
		letters = append(letters, mg.Grade)
		issues = append(issues, metricIssues...)
	}

	score.Score = ScoreGrades(letters)
	score.Letter = LetterFor(score.Score)
	return score, issues
}

// GradeCompany grades every category in catalog order and composes the overall rating.
func (g *Grader) GradeCompany(c domain.Company, catalog *domain.Catalog) domain.CompanyGrading {
	result := domain.CompanyGrading{
		Ticker:   c.Ticker,
		Sector:   c.Sector,
		Industry: c.Industry,
	}

	for _, category := range catalog.Categories() {
		score, issues := g.GradeCategory(c, category)
		result.Categories = append(result.Categories, score)
		result.Issues = append(result.Issues, issues...)
	}

	result.OverallRating = CompositeRating(result.Categories)
	result.PercentDiff = PercentDiff(c)
	return result
}
