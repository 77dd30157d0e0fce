package email

const (
	subjectLeadReceived       = "We have received your enquiry"
	subjectAssignmentOfferFmt = "New lead available: %s"
	subjectCaseOpenedFmt      = "Your case %s has been opened"
	subjectNoProviderFound    = "Update on your enquiry"
)
