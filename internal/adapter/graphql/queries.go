package graphql

const eventFields = `
	id
	title
	description
	start
	end
	creator { id }
	event_images { url }
	tags { title }
`

const locationFields = `
	name
	street_address
	street_address_2
	city
	state
	zipcode
	neighborhood
	latitude
	longitude
`

const eventByIDWithDistanceQuery = `
query EventByIDWithDistance($id: ID!, $userLatitude: Float, $userLongitude: Float) {
	events(where: {id: $id}) {` + eventFields + `
		locations {` + locationFields + `
			distanceFromUser(userLatitude: $userLatitude, userLongitude: $userLongitude)
			distanceUnit
		}
	}
}`

const eventByIDQuery = `
query EventByID($id: ID!) {
	events(where: {id: $id}) {` + eventFields + `
		locations {` + locationFields + `}
	}
}`

const eventsWithDistanceQuery = `
query EventsWithDistance($userLatitude: Float, $userLongitude: Float) {
	events {` + eventFields + `
		locations {` + locationFields + `
			distanceFromUser(userLatitude: $userLatitude, userLongitude: $userLongitude)
			distanceUnit
		}
	}
}`

const createEventMutation = `
mutation CreateEvent($data: EventCreateInput!) {
	addEvent(data: $data) {` + eventFields + `
		locations {` + locationFields + `}
	}
}`

const updateEventMutation = `
mutation UpdateEvent($id: ID!, $data: EventUpdateInput!) {
	updateEvent(id: $id, data: $data) {` + eventFields + `
		locations {` + locationFields + `}
	}
}`
