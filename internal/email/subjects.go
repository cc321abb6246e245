package email

const subjectDailyDigestFmt = "Dagrapport %s"
