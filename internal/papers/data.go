package papers

import "github.com/tkrell/backend/internal/models"

// seedPapers is the starter catalogue of national exam papers. Seeding
// is idempotent on (title, year).
var seedPapers = []models.PastPaper{
	{Title: "KCSE English 2024", Subject: "English", GradeLevel: "form4", ExamBoard: "KNEC", Year: 2024},
	{Title: "KCSE English 2023", Subject: "English", GradeLevel: "form4", ExamBoard: "KNEC", Year: 2023},
	{Title: "KCSE Mathematics 2024", Subject: "Mathematics", GradeLevel: "form4", ExamBoard: "KNEC", Year: 2024},
	{Title: "KCSE Mathematics 2023", Subject: "Mathematics", GradeLevel: "form4", ExamBoard: "KNEC", Year: 2023},
	{Title: "KCSE Kiswahili 2024", Subject: "Kiswahili", GradeLevel: "form4", ExamBoard: "KNEC", Year: 2024},
	{Title: "KCSE Biology 2024", Subject: "Biology", GradeLevel: "form4", ExamBoard: "KNEC", Year: 2024},
	{Title: "KCSE Chemistry 2024", Subject: "Chemistry", GradeLevel: "form4", ExamBoard: "KNEC", Year: 2024},
	{Title: "KCSE Physics 2024", Subject: "Physics", GradeLevel: "form4", ExamBoard: "KNEC", Year: 2024},
	{Title: "KCPE English 2023", Subject: "English", GradeLevel: "class8", ExamBoard: "KNEC", Year: 2023},
	{Title: "KCPE Mathematics 2023", Subject: "Mathematics", GradeLevel: "class8", ExamBoard: "KNEC", Year: 2023},
	{Title: "KCPE Kiswahili 2023", Subject: "Kiswahili", GradeLevel: "class8", ExamBoard: "KNEC", Year: 2023},
	{Title: "KCPE Science 2023", Subject: "Science", GradeLevel: "class8", ExamBoard: "KNEC", Year: 2023},
	{Title: "KCPE Social Studies 2023", Subject: "Social Studies", GradeLevel: "class8", ExamBoard: "KNEC", Year: 2023},
}
