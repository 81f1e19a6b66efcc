package graphql

const movieFields = `
	id
	imdbID
	title
	year
	rated
	runtime
	genre
	director
	actors
	plot
	language
	country
	poster
	ratings {
		Source
		Value
	}
	imdbRating
	type
	favorited_by_count
	is_favorited
	created_at
	updated_at
`

const pageFields = `
	data {` + movieFields + `}
	pagination {
		current_page
		last_page
		per_page
		total
		has_more_pages
	}
`

const searchMoviesQuery = `
query SearchMovies(
	$query: String
	$page: Int = 1
	$limit: Int = 12
	$genre: String
	$year: String
	$rating: String
	$sortBy: String = "relevance"
	$sortOrder: String = "desc"
) {
	searchMovies(
		query: $query
		page: $page
		limit: $limit
		genre: $genre
		year: $year
		rating: $rating
		sortBy: $sortBy
		sortOrder: $sortOrder
	) {` + pageFields + `}
}`

const moviesQuery = `
query GetMovies(
	$page: Int = 1
	$limit: Int = 12
	$genre: String
	$year: String
	$sortBy: String = "created_at"
	$sortOrder: String = "desc"
) {
	movies(
		page: $page
		limit: $limit
		genre: $genre
		year: $year
		sortBy: $sortBy
		sortOrder: $sortOrder
	) {` + pageFields + `}
}`

const movieQuery = `
query GetMovie($id: ID!) {
	movie(id: $id) {` + movieFields + `}
}`
