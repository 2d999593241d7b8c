package exports

var importantRequirements = []string{
	"Applicants must show income of 40 TIMES THE MONTHLY RENT (may be combined among applicants)",
	"Guarantors must show income of 80 TIMES THE MONTHLY RENT (may NOT be combined with applicants)",
	"$50.00 non-refundable processing fee per adult applicant and guarantor",
	"Applications must be submitted in full as detailed below",
	"Only complete applications will be reviewed and considered for tenancy",
	"Applications will not remove apartments from the market",
	"Lease signings must be scheduled within three (3) days of approval",
}

var requiredDocuments = []string{
	"Completed and signed application by applicants and guarantors",
	"$50.00 Non-refundable processing fee per adult applicant and per guarantor",
	"Driver's License or Photo ID (18 & over)",
	"Social Security Card",
	"Financial Statement - First Page (Checking, Savings and/or other assets)",
	"Previous year tax returns - First Page",
	"Proof of Employment letter on company letterhead",
	"Last 4 paystubs (If paid weekly) - or - Last 2 paystubs (if paid bi-weekly)",
}

var requirementsSummary = []string{
	"Applicants must show income of 40 TIMES THE MONTHLY RENT",
	"Guarantors must show income of 80 TIMES THE MONTHLY RENT",
	"$50.00 non-refundable processing fee per adult applicant and guarantor",
	"Applications must be submitted in full",
}

// disclaimer is printed one sentence per paragraph.
var disclaimer = []string{
	"The Landlord will in no event be bound, nor will possession be given, unless and until a lease executed by the Landlord has been delivered to the Tenant.",
	"The applicant and his/her references must be satisfactory to the Landlord.",
	"Please be advised that the date on page one of the lease is not your move-in date.",
	"Your move-in date will be arranged with you after you have been approved.",
	"No representations or agreements by agents, brokers or others are binding on the Landlord or Agent unless included in the written lease proposed to be executed.",
	"I hereby warrant that all my representations set forth herein are true.",
	"I recognize the truth of the information contained herein is essential.",
	"I further represent that I am not renting a room or an apartment under any other name, nor have I ever been dispossessed from any apartment, nor am I now being dispossessed.",
	"I represent that I am over 18 years of age.",
	"I have been advised that I have the right, under section 8068 of the Fair Credit Reporting Act, to make a written request, directed to the appropriate credit reporting agency, within reasonable time, for a complete and accurate disclosure of the nature and scope of any credit investigation.",
	"I understand that upon submission, this application and all related documents become the property of the Landlord, and will not be returned to me under any circumstances.",
	"I authorize the Landlord, Agent and credit reporting agency to obtain a consumer credit report on me and to verify any information on this application with regard to my employment history, current and prior tenancies, bank accounts, and all other information that the Landlord deems pertinent to my obtaining residency.",
	"I understand that I shall not be permitted to receive or review my application file or my credit consumer report.",
	"I authorize banks, financial institutions, landlords, business associates, credit bureaus, attorneys, accountants and other persons or institutions with whom I am acquainted to furnish any and all information regarding myself.",
	"This authorization also applies to any update reports which may be ordered as needed.",
	"A photocopy or fax of this authorization shall be accepted with the same authority as this original.",
	"I will present any other information required by the Landlord or Agent in connection with the lease contemplated herein.",
	"I understand that the application fee is non-refundable.",
	"The Civil Rights Act of 1968, as amended by the Fair Housing Amendments Act of 1988, prohibits discrimination in the rental of housing based on race, color, religion, sex, handicap, familial status or national origin.",
	"The Federal Agency, which administers compliance with this law, is the U.S. Department of Housing and Urban Development.",
}
