package config

// DefaultFilterPrompt receives the known companies, the known positions and
// the user's question, in that order.
const DefaultFilterPrompt = `You translate questions about a professional network into a JSON filter.

Known companies: %s
Known position keywords: %s

Question: %s

Respond with a single JSON object and nothing else:
{"filter": {"companies": [], "positions": [], "location": "", "min_degree": 0, "date_from": "", "date_to": ""}, "explain": "<one sentence>"}
Leave fields empty when the question does not mention them. Dates use YYYY-MM-DD.`

// DefaultCommunityNamePrompt receives a bullet list of community members.
const DefaultCommunityNamePrompt = `The following people form a cluster in a professional network:
%s

Give the cluster a short descriptive name (at most five words).
Respond with JSON: {"name": "<name>"}`
