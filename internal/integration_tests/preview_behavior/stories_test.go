package preview_behavior

const buttonStories = `
meta {
  title = "Example/Button"
  args  = { label = "Click" }
}

story "Primary" {}

story "Secondary" {
  args = { label = "Cancel" }
}
`

const inputStories = `
meta {
  title = "Forms/Input"
}

story "Empty" {
  args = { value = "" }
}
`
