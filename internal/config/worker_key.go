package config

type WorkerKeyStruct struct {
	GradeAnswersQueue string
}

var WorkerKey = &WorkerKeyStruct{
	GradeAnswersQueue: "grade_answers_queue",
}
